package independence

import (
	"fmt"
	"math"
)

// mean returns the arithmetic mean of xs.
func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// covariance returns the sample covariance of two equally long series.
func covariance(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}

// pearson returns the sample Pearson correlation coefficient of two equally
// long series. Zero-variance input yields NaN, which downstream t-tests
// treat as "no conclusion".
func pearson(xs, ys []float64) float64 {
	sx := math.Sqrt(covariance(xs, xs))
	sy := math.Sqrt(covariance(ys, ys))
	return covariance(xs, ys) / (sx * sy)
}

// tValues returns the t statistic for a (partial) correlation with the
// given number of control variables, and the two-sided critical value at
// significance level alpha.
func tValues(sampleSize, controlVars int, corr, alpha float64) (t, critical float64) {
	dof := float64(sampleSize - controlVars - 2)
	if dof <= 0 || math.IsNaN(corr) || corr*corr >= 1 {
		return math.NaN(), math.NaN()
	}
	t = corr * math.Sqrt(dof/(1-corr*corr))
	critical = studentTQuantile(1-alpha/2, dof)
	return t, critical
}

// independent reports whether the t-test fails to reject independence,
// i.e. |t| below the critical value. NaN inputs never reject.
func independent(t, critical float64) bool {
	if math.IsNaN(t) || math.IsNaN(critical) {
		return false
	}
	return math.Abs(t) < critical
}

// studentTCDF is the CDF of Student's t distribution with dof degrees of
// freedom.
func studentTCDF(t, dof float64) float64 {
	x := dof / (dof + t*t)
	tail := 0.5 * regIncBeta(dof/2, 0.5, x)
	if t >= 0 {
		return 1 - tail
	}
	return tail
}

// studentTQuantile inverts studentTCDF by bisection. p must be in (0, 1).
func studentTQuantile(p, dof float64) float64 {
	if p == 0.5 {
		return 0
	}
	if p < 0.5 {
		return -studentTQuantile(1-p, dof)
	}
	lo, hi := 0.0, 1.0
	for studentTCDF(hi, dof) < p {
		hi *= 2
		if hi > 1e12 {
			return math.Inf(1)
		}
	}
	for i := 0; i < 200 && hi-lo > 1e-12*(1+hi); i++ {
		mid := (lo + hi) / 2
		if studentTCDF(mid, dof) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// regIncBeta is the regularized incomplete beta function I_x(a, b),
// evaluated with the continued-fraction expansion.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	front := math.Exp(lab - la - lb + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the continued fraction for the incomplete beta function
// using the modified Lentz method.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 300
		eps     = 3e-14
		tiny    = 1e-300
	)
	qab, qap, qam := a+b, a+1, a-1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
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
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
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

// invertMatrix returns the inverse of a square matrix via Gauss-Jordan
// elimination with partial pivoting. The input is not modified.
func invertMatrix(m [][]float64) ([][]float64, error) {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("matrix is singular")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		p := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= p
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			f := aug[row][col]
			if f == 0 {
				continue
			}
			for j := range aug[row] {
				aug[row][j] -= f * aug[col][j]
			}
		}
	}
	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = aug[i][n:]
	}
	return inv, nil
}
