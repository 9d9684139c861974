package vertex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/track"
)

const (
	minSin2     = 1e-10
	maxHalvings = 8
)

// Result is a converged vertex.
type Result struct {
	// PCA is the fitted vertex.
	PCA r3.Vec
	// Cov is the covariance of PCA.
	Cov kinematics.Cov3
	// Chi2 is the sum of (weighted) squared distances of the tracks to PCA.
	Chi2 float64
	// Iterations is the number of Newton iterations run.
	Iterations int
	// Paths holds the path length of every track at its closest point.
	Paths []float64

	inputs []track.State
	atPCA  []track.State
	mom    []r3.Vec
	keep   bool
}

// NumTracks returns the number of fitted tracks.
func (r *Result) NumTracks() int { return len(r.inputs) }

// Track returns track i moved to the vertex. With PropagateToPCA disabled it
// returns the input state unchanged.
func (r *Result) Track(i int) track.State {
	if r.keep {
		return r.atPCA[i]
	}
	return r.inputs[i]
}

// Momentum returns the momentum of track i at the vertex.
func (r *Result) Momentum(i int) r3.Vec { return r.mom[i] }

// fitter is the per-call workspace.
type fitter struct {
	cfg    Config
	tracks []track.State
	w      []mat3
	m      mat3
}

type evaluation struct {
	pts  []track.Point
	v    r3.Vec
	res  []r3.Vec
	chi2 float64
}

// Fit finds the point of closest approach of tracks.
func Fit(tracks []track.State, cfg Config) (*Result, error) {
	if len(tracks) < 2 {
		return nil, ErrTooFewTracks
	}

	f := &fitter{cfg: cfg, tracks: tracks}

	l, err := f.seed()
	if err != nil {
		return nil, err
	}
	if err := f.initWeights(l); err != nil {
		return nil, err
	}

	cur := f.evaluate(l)
	if math.IsNaN(cur.chi2) {
		return nil, fmt.Errorf("%w: non-finite seed", ErrDegenerate)
	}

	iter := 0
	converged := cur.chi2 == 0
	for !converged && iter < cfg.MaxIterations {
		iter++

		step, gn, err := f.step(cur)
		if err != nil {
			return nil, err
		}

		if maxAbs(step) < cfg.MinParamChange {
			try := advance(l, step, 1)
			if next := f.evaluate(try); next.chi2 <= cur.chi2 {
				l, cur = try, next
			}
			converged = true
			break
		}

		next, e, ok := f.lineSearch(l, step, cur.chi2)
		if !ok && !gn {
			if step, err = f.solve(cur, true); err == nil {
				next, e, ok = f.lineSearch(l, step, cur.chi2)
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: no descent after %d iterations", ErrNotConverged, iter)
		}

		ratio := e.chi2 / cur.chi2
		l, cur = next, e
		if cur.chi2 == 0 || ratio > cfg.MinRelChi2Change {
			converged = true
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w: %d iterations", ErrNotConverged, iter)
	}

	if cfg.MaxR > 0 && math.Hypot(cur.v.X, cur.v.Y) > cfg.MaxR {
		return nil, fmt.Errorf("%w: r=%.3g", ErrMaxR, math.Hypot(cur.v.X, cur.v.Y))
	}

	res := &Result{
		PCA:        cur.v,
		Chi2:       cur.chi2,
		Iterations: iter,
		Paths:      l,
		inputs:     append([]track.State(nil), tracks...),
		atPCA:      make([]track.State, len(tracks)),
		mom:        make([]r3.Vec, len(tracks)),
		keep:       cfg.PropagateToPCA,
	}

	var cov mat3
	for k, st := range tracks {
		moved := st.Propagate(l[k], cfg.Bz)
		res.atPCA[k] = moved
		res.mom[k] = moved.Mom

		perp := fromCov3(track.TransverseCov(moved.Cov.Position(), cur.pts[k].Dir))
		a := f.m.mul(f.w[k])
		cov = cov.add(a.mul(perp).mul(a.t()))
	}
	res.Cov = cov.cov3()

	return res, nil
}

// seed intersects the straight tangents of every track pair at the
// reference points and returns the projection of the mean crossing onto
// each tangent.
func (f *fitter) seed() ([]float64, error) {
	n := len(f.tracks)
	dirs := make([]r3.Vec, n)
	for k, st := range f.tracks {
		dirs[k] = st.At(0, f.cfg.Bz).Dir
	}

	var sum r3.Vec
	var used, dzRejected int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pi, pj := f.tracks[i].Pos, f.tracks[j].Pos
			di, dj := dirs[i], dirs[j]

			b := r3.Dot(di, dj)
			den := r3.Norm2(di)*r3.Norm2(dj) - b*b
			if den < minSin2 {
				continue
			}
			w0 := r3.Sub(pi, pj)
			d, e := r3.Dot(di, w0), r3.Dot(dj, w0)
			s := (b*e - r3.Norm2(dj)*d) / den
			t := (r3.Norm2(di)*e - b*d) / den

			qi := r3.Add(pi, r3.Scale(s, di))
			qj := r3.Add(pj, r3.Scale(t, dj))
			if f.cfg.MaxDZIni > 0 && math.Abs(qi.Z-qj.Z) > f.cfg.MaxDZIni {
				dzRejected++
				continue
			}
			sum = r3.Add(sum, r3.Scale(0.5, r3.Add(qi, qj)))
			used++
		}
	}
	if used == 0 {
		if dzRejected > 0 {
			return nil, ErrMaxDZ
		}
		return nil, fmt.Errorf("%w: no crossing tangent pair", ErrDegenerate)
	}

	v := r3.Scale(1/float64(used), sum)
	l := make([]float64, n)
	for k, st := range f.tracks {
		l[k] = r3.Dot(r3.Sub(v, st.Pos), dirs[k])
	}
	return l, nil
}

func (f *fitter) initWeights(l []float64) error {
	n := len(f.tracks)
	f.w = make([]mat3, n)

	if f.cfg.UseAbsDCA {
		for k := range f.w {
			f.w[k] = identity3()
		}
		f.m = identity3().scale(1 / float64(n))
		return nil
	}

	var sum mat3
	for k, st := range f.tracks {
		moved := st.Propagate(l[k], f.cfg.Bz)
		perp := track.TransverseCov(moved.Cov.Position(), st.At(l[k], f.cfg.Bz).Dir)
		w, ok := pinv(perp)
		if !ok {
			return fmt.Errorf("%w: track %d", ErrSingularCovariance, k)
		}
		f.w[k] = w
		sum = sum.add(w)
	}
	m, ok := sum.inverse()
	if !ok {
		return fmt.Errorf("%w: summed weights", ErrSingularCovariance)
	}
	f.m = m
	return nil
}

func (f *fitter) evaluate(l []float64) evaluation {
	n := len(f.tracks)
	e := evaluation{pts: make([]track.Point, n), res: make([]r3.Vec, n)}

	var wp r3.Vec
	for k, st := range f.tracks {
		e.pts[k] = st.At(l[k], f.cfg.Bz)
		wp = r3.Add(wp, f.w[k].mulVec(e.pts[k].Pos))
	}
	e.v = f.m.mulVec(wp)

	for k := range f.tracks {
		e.res[k] = r3.Sub(e.pts[k].Pos, e.v)
		e.chi2 += r3.Dot(e.res[k], f.w[k].mulVec(e.res[k]))
	}
	return e
}

// step returns a Newton step, falling back to Gauss-Newton when the Hessian
// is singular or the Newton direction does not descend.
func (f *fitter) step(e evaluation) ([]float64, bool, error) {
	if s, err := f.solve(e, false); err == nil && descends(f.gradient(e), s) {
		return s, false, nil
	}
	s, err := f.solve(e, true)
	if err != nil {
		return nil, true, err
	}
	return s, true, nil
}

func (f *fitter) gradient(e evaluation) []float64 {
	g := make([]float64, len(f.tracks))
	for k := range g {
		g[k] = 2 * r3.Dot(f.w[k].mulVec(e.pts[k].Dir), e.res[k])
	}
	return g
}

// solve returns -H⁻¹g. With gaussNewton the curvature term is dropped.
func (f *fitter) solve(e evaluation, gaussNewton bool) ([]float64, error) {
	n := len(f.tracks)
	a := make([]r3.Vec, n)
	ma := make([]r3.Vec, n)
	for k := range a {
		a[k] = f.w[k].mulVec(e.pts[k].Dir)
		ma[k] = f.m.mulVec(a[k])
	}

	h := mat.NewDense(n, n, nil)
	g := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		g.SetVec(k, -2*r3.Dot(a[k], e.res[k]))
		for j := 0; j < n; j++ {
			v := -2 * r3.Dot(a[k], ma[j])
			if j == k {
				v += 2 * r3.Dot(e.pts[k].Dir, a[k])
				if !gaussNewton {
					v += 2 * r3.Dot(e.res[k], f.w[k].mulVec(e.pts[k].Curv))
				}
			}
			h.Set(k, j, v)
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(h, g); err != nil {
		return nil, fmt.Errorf("%w: singular hessian: %v", ErrDegenerate, err)
	}
	out := make([]float64, n)
	for k := range out {
		out[k] = x.AtVec(k)
		if math.IsNaN(out[k]) || math.IsInf(out[k], 0) {
			return nil, fmt.Errorf("%w: non-finite step", ErrDegenerate)
		}
	}
	return out, nil
}

// lineSearch halves step until χ² does not increase.
func (f *fitter) lineSearch(l, step []float64, chi2 float64) ([]float64, evaluation, bool) {
	scale := 1.0
	for i := 0; i <= maxHalvings; i++ {
		try := advance(l, step, scale)
		if e := f.evaluate(try); e.chi2 <= chi2 {
			return try, e, true
		}
		scale /= 2
	}
	return nil, evaluation{}, false
}

func advance(l, step []float64, scale float64) []float64 {
	out := make([]float64, len(l))
	for k := range l {
		out[k] = l[k] + scale*step[k]
	}
	return out
}

func descends(g, step []float64) bool {
	var d float64
	for k := range g {
		d += g[k] * step[k]
	}
	return d < 0
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
