package rating

import "math"

const (
	g2Scale    = 173.7178
	q          = math.Ln10 / 400.0
	pi2        = math.Pi * math.Pi
	DefaultTau = 0.5
)

// Glicko2 is a rating on the public 1500 scale. The simulation report rates
// each synthetic player over fixed-size periods of rounds.
type Glicko2 struct {
	Rating     float64 `json:"rating"`
	RD         float64 `json:"rd"`
	Volatility float64 `json:"volatility"`
	Periods    int     `json:"periods"`
}

func NewGlicko2() *Glicko2 {
	return &Glicko2{Rating: 1500, RD: 350, Volatility: 0.06}
}

func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - 1500.0) / g2Scale, rd / g2Scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*g2Scale + 1500.0, phi * g2Scale }

func g(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*q*q*phi*phi/pi2) }

func expectMu(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phij)*(mu-muj)))
}

// Game is one result inside a rating period. Score is in [0,1].
type Game struct {
	Opp   Glicko2
	Score float64
}

// Period applies one rating period. Opponent ratings are taken as they stood
// at the start of the period. With no games only the deviation grows.
func (a *Glicko2) Period(games []Game, tau float64) {
	mu, phi := toMuPhi(a.Rating, a.RD)
	a.Periods++
	if len(games) == 0 {
		_, a.RD = fromMuPhi(mu, math.Sqrt(phi*phi+a.Volatility*a.Volatility))
		return
	}

	var sumG2E, sumGSE float64
	for _, gm := range games {
		muj, phij := toMuPhi(gm.Opp.Rating, gm.Opp.RD)
		gj := g(phij)
		e := expectMu(mu, muj, phij)
		sumG2E += gj * gj * e * (1.0 - e)
		sumGSE += gj * (gm.Score - e)
	}
	v := 1.0 / (q * q * sumG2E)
	delta := v * q * sumGSE

	vol := a.Volatility
	if math.Abs(delta) >= 1e-12 {
		vol = newVolatility(phi, v, delta, a.Volatility, tau)
	}
	phiStar := math.Sqrt(phi*phi + vol*vol)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := mu + phiNew*phiNew*q*sumGSE
	a.Rating, a.RD = fromMuPhi(muNew, phiNew)
	a.Volatility = vol
}

// newVolatility finds the root of the Glicko-2 volatility function with the
// Illinois method.
func newVolatility(phi, v, delta, sigma, tau float64) float64 {
	a2 := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		den := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*den*den) - (x-a2)/(tau*tau)
	}
	A := a2
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a2-k*tau) < 0 && k < 1e6 {
			k++
		}
		B = a2 - k*tau
	}
	fA, fB := f(A), f(B)
	for it := 0; it < 100 && math.Abs(B-A) > 1e-6; it++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2.0)
}
