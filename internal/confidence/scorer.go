package confidence

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Classification thresholds. These are the single source of truth: every
// call site, scan-time scoring and later re-validation alike, classifies
// through Classify so the cut points cannot drift apart.
const (
	// AutoProceedThreshold is the minimum combined score for automated
	// remediation without user confirmation.
	AutoProceedThreshold = 85.0

	// ManualReviewThreshold is the minimum combined score to surface the
	// hit for manual review. Below it the hit is classified reject.
	ManualReviewThreshold = 40.0
)

// Classify maps a combined score to its classification. It is monotonic by
// construction: a higher score never yields a lower classification.
func Classify(score float64) model.Classification {
	switch {
	case score >= AutoProceedThreshold:
		return model.ClassificationAutoProceed
	case score >= ManualReviewThreshold:
		return model.ClassificationNeedsReview
	default:
		return model.ClassificationReject
	}
}

// Weights controls how factor scores combine. The exact weighting is a
// product-calibration concern, so it is configuration rather than a formula
// baked into the scorer; DefaultWeights is the shipped calibration.
type Weights struct {
	// Name weights the name-match factor.
	Name float64

	// Contact weights the email/phone-match factor.
	Contact float64

	// Locality weights the address/state-match factor.
	Locality float64
}

// DefaultWeights is the shipped factor calibration. Contact matches carry
// the most signal: an email or phone match is near-unique to the user,
// while names and localities collide constantly.
func DefaultWeights() Weights {
	return Weights{
		Name:     0.35,
		Contact:  0.45,
		Locality: 0.20,
	}
}

// Scorer computes confidence results for raw hits.
type Scorer struct {
	weights Weights
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights overrides the factor weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// NewScorer creates a Scorer with the default calibration.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the confidence result for one hit.
//
// Factors are computed independently and combined as a weighted average over
// the factors that were applicable, clamped to [0,100]. A factor is
// applicable when both the hit and the profile carry data for it. A hit with
// no applicable factors scores zero and classifies reject: with nothing to
// compare, we never guess in favor of a match.
func (s *Scorer) Score(hit model.RawHit, profile model.IdentityProfile) model.ConfidenceResult {
	factors := make([]model.FactorScore, 0, 3)

	if f, ok := s.scoreName(hit, profile); ok {
		factors = append(factors, f)
	}
	if f, ok := s.scoreContact(hit, profile); ok {
		factors = append(factors, f)
	}
	if f, ok := s.scoreLocality(hit, profile); ok {
		factors = append(factors, f)
	}

	score := combine(factors)

	return model.ConfidenceResult{
		Score:          score,
		Classification: Classify(score),
		Factors:        factors,
		Reasoning:      reasoning(factors, score),
		ValidatedAt:    time.Now().UTC(),
	}
}

// combine computes the weighted average over applicable factors, with the
// weights renormalized so missing factors neither punish nor reward the hit.
func combine(factors []model.FactorScore) float64 {
	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += f.Score * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0
	}

	score := weighted / totalWeight
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// scoreName compares the hit's listed name against the user's names and
// aliases. Token-based comparison handles middle names, initials, and
// reordered name parts.
func (s *Scorer) scoreName(hit model.RawHit, profile model.IdentityProfile) (model.FactorScore, bool) {
	listed := hit.MatchedFields["name"]
	names := profile.Names()
	if listed == "" || len(names) == 0 {
		return model.FactorScore{}, false
	}

	best := 0.0
	detail := "listed name does not match any known name or alias"
	for _, known := range names {
		score := nameSimilarity(known, listed)
		if score > best {
			best = score
			switch {
			case score >= 100:
				detail = "listed name exactly matches a known name"
			case score >= 90:
				detail = "listed name contains a known name"
			default:
				detail = "listed name partially overlaps a known name"
			}
		}
	}

	return model.FactorScore{
		Factor: "name",
		Score:  best,
		Weight: s.weights.Name,
		Detail: detail,
	}, true
}

// scoreContact compares listed email/phone fields against the profile.
// The best contact match wins: one exact contact match is near-conclusive
// regardless of how many other contact fields the listing omits.
func (s *Scorer) scoreContact(hit model.RawHit, profile model.IdentityProfile) (model.FactorScore, bool) {
	listedEmail := hit.MatchedFields["email"]
	listedPhone := hit.MatchedFields["phone"]
	hasProfile := len(profile.Emails) > 0 || len(profile.Phones) > 0
	if (listedEmail == "" && listedPhone == "") || !hasProfile {
		return model.FactorScore{}, false
	}

	best := 0.0
	detail := "listed contact fields do not match known email or phone"

	if listedEmail != "" {
		for _, known := range profile.Emails {
			if foldEqual(known, listedEmail) {
				best = 100
				detail = "listed email exactly matches a known email"
			}
		}
	}

	if listedPhone != "" && best < 100 {
		listedDigits := digits(listedPhone)
		for _, known := range profile.Phones {
			knownDigits := digits(known)
			switch {
			case knownDigits != "" && knownDigits == listedDigits:
				best = 100
				detail = "listed phone exactly matches a known phone"
			case best < 70 && lastN(knownDigits, 7) == lastN(listedDigits, 7) && len(listedDigits) >= 7:
				best = 70
				detail = "listed phone matches a known phone's local number"
			}
		}
	}

	return model.FactorScore{
		Factor: "contact",
		Score:  best,
		Weight: s.weights.Contact,
		Detail: detail,
	}, true
}

// scoreLocality compares listed city/state against the user's addresses.
func (s *Scorer) scoreLocality(hit model.RawHit, profile model.IdentityProfile) (model.FactorScore, bool) {
	listedCity := hit.MatchedFields["city"]
	listedState := hit.MatchedFields["state"]
	if (listedCity == "" && listedState == "") || len(profile.Addresses) == 0 {
		return model.FactorScore{}, false
	}

	best := 0.0
	detail := "listed locality does not match any known address"
	for _, addr := range profile.Addresses {
		cityMatch := listedCity != "" && foldEqual(addr.City, listedCity)
		stateMatch := listedState != "" && foldEqual(addr.State, listedState)

		switch {
		case cityMatch && stateMatch:
			best = 100
			detail = "listed city and state match a known address"
		case cityMatch && best < 70:
			best = 70
			detail = "listed city matches a known address"
		case stateMatch && best < 60:
			best = 60
			detail = "listed state matches a known address"
		}
	}

	return model.FactorScore{
		Factor: "locality",
		Score:  best,
		Weight: s.weights.Locality,
		Detail: detail,
	}, true
}

// reasoning assembles the user-facing prose summary from the factor
// breakdown. The per-factor details remain available separately; this is
// the one-line version for list views.
func reasoning(factors []model.FactorScore, score float64) string {
	if len(factors) == 0 {
		return "no identity fields were available to compare against this listing"
	}

	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		parts = append(parts, fmt.Sprintf("%s %.0f/100", f.Factor, f.Score))
	}
	return fmt.Sprintf("combined confidence %.0f/100 (%s)", score, strings.Join(parts, ", "))
}
