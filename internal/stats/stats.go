// Package stats computes the inferential statistics the miners attach to
// each accumulated pattern: central tendency of forward returns, a
// sign-test p-value, and a Student-t significance ladder.
package stats

import "math"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 divisor) of xs around
// mean. For n <= 2 it returns 0, so a two-sample set reports zero spread
// rather than dividing by n-1 = 1.
func StdDev(xs []float64, mean float64) float64 {
	n := len(xs)
	if n <= 2 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Median returns the middle value of xs taken in the order given — it does
// NOT sort a copy first. Callers that want a sorted median must sort xs
// themselves before calling.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

// BinomialSignP returns the two-sided sign-test p-value for observing k
// positive outcomes out of n trials under a fair-coin null. The statistic
// is deliberately left unscaled by 1/sqrt(2) relative to the usual normal
// approximation to the binomial sign test.
func BinomialSignP(k, n int) float64 {
	if n == 0 {
		return 1
	}
	q := math.Abs(float64(k)-float64(n)/2) / math.Sqrt(float64(n))
	return 1 - math.Erf(q)
}

// alphaLadder are the significance levels StudentsTP walks from tightest to
// loosest when locating the smallest alpha the mean return clears.
var alphaLadder = []float64{1e-5, 1e-4, 1e-3, 1e-2, 5e-2, 1e-1, 2.5e-1, 5e-1, 1}

// StudentsTP walks alphaLadder from tightest to loosest and returns the
// first alpha at which mean clears its two-sided critical bound
// (mean - T*se > 0 for a positive mean, mean + T*se < 0 for a negative
// one), where T is the t-quantile at 1-alpha/2 with n-1 degrees of
// freedom and se = sigma/sqrt(n). Returns 1 when n < 2, sigma is 0, or no
// rung of the ladder is cleared.
func StudentsTP(mean, sigma float64, n int) float64 {
	if n < 2 || sigma == 0 || mean == 0 {
		return 1
	}
	df := float64(n - 1)
	se := sigma / math.Sqrt(float64(n))
	for _, alpha := range alphaLadder {
		T := tQuantile(df, 1-alpha/2)
		if mean > 0 && mean-T*se > 0 {
			return alpha
		}
		if mean < 0 && mean+T*se < 0 {
			return alpha
		}
	}
	return 1
}

// tQuantile returns the value t such that P(T <= t) = p for a Student-t
// distribution with df degrees of freedom, located by bisection over the
// regularized incomplete beta function (the standard t-distribution CDF
// identity), since no statistics library is available.
func tQuantile(df, p float64) float64 {
	if p <= 0.5 {
		return 0
	}
	lo, hi := 0.0, 1e4
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if 1-upperTailT(mid, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// upperTailT returns P(T > t) for a Student-t distribution with df degrees
// of freedom, computed from the regularized incomplete beta function:
// P(T > t) = 0.5 * I_{df/(df+t^2)}(df/2, 1/2).
func upperTailT(t, df float64) float64 {
	x := df / (df + t*t)
	return 0.5 * incompleteBeta(x, df/2, 0.5)
}

// lgamma wraps math.Lgamma, discarding its sign (all arguments used here
// are positive, where the sign is always +1).
func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// incompleteBeta evaluates the regularized incomplete beta function I_x(a,b)
// via a continued-fraction expansion (Numerical Recipes' betacf).
func incompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta := lgamma(a) + lgamma(b) - lgamma(a+b)
	front := math.Exp(math.Log(x)*a + math.Log(1-x)*b - lbeta)
	if x < (a+1)/(a+b+2) {
		return front * betacf(x, a, b) / a
	}
	return 1 - front*betacf(1-x, b, a)/b
}

// betacf is the continued-fraction factor used by incompleteBeta.
func betacf(x, a, b float64) float64 {
	const maxIter = 200
	const eps = 3e-12
	const tiny = 1e-30

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		mf := float64(m)
		m2 := 2 * mf

		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// Summary bundles the statistics the miners report per accumulated pattern.
type Summary struct {
	Mean      float64
	Sigma     float64
	Median    float64
	Min       float64
	Max       float64
	MeanPos   float64
	MeanNeg   float64
	PosCount  int
	NegCount  int
	SignP     float64
	StudentsP float64
}

// Summarize computes the full Summary over returns, preserving their
// insertion order for the median (see Median's docstring). A return of
// exactly 0 counts as negative, matching the original miner's
// this_return <= 0 classification, so PosCount+NegCount always equals
// len(returns).
func Summarize(returns []float64) Summary {
	n := len(returns)
	if n == 0 {
		return Summary{}
	}

	var sumPos, sumNeg float64
	var posCount, negCount int
	min, max := returns[0], returns[0]
	for _, r := range returns {
		if r > 0 {
			sumPos += r
			posCount++
		} else {
			sumNeg += r
			negCount++
		}
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}

	mean := Mean(returns)
	sigma := StdDev(returns, mean)

	var meanPos, meanNeg float64
	if posCount > 0 {
		meanPos = sumPos / float64(posCount)
	}
	if negCount > 0 {
		meanNeg = sumNeg / float64(negCount)
	}

	return Summary{
		Mean:      mean,
		Sigma:     sigma,
		Median:    Median(returns),
		Min:       min,
		Max:       max,
		MeanPos:   meanPos,
		MeanNeg:   meanNeg,
		PosCount:  posCount,
		NegCount:  negCount,
		SignP:     BinomialSignP(posCount, n),
		StudentsP: StudentsTP(mean, sigma, n),
	}
}
