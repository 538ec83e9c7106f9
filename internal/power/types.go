package power

// Confidence grades the numbers behind an upgrade edge. Exact edges come
// straight from a reference table, estimated ones from the growth
// extrapolation, qualitative ones carry no numbers at all.
type Confidence string

const (
	ConfidenceExact       Confidence = "exact"
	ConfidenceEstimated   Confidence = "estimated"
	ConfidenceQualitative Confidence = "qualitative"
)

// Upgrade type vocabulary.
const (
	TypeChiefGear    = "chief_gear"
	TypeCharm        = "charm"
	TypeHeroLevel    = "hero_level"
	TypeHeroStar     = "hero_star"
	TypeTroopTier    = "troop_tier"
	TypeResearch     = "research"
	TypePets         = "pets"
	TypeAllianceTech = "alliance_tech"
)

// Upgrade is one adjacent upgrade edge: the single next step on some track,
// with its benefit, cost and the efficiency that makes tracks comparable.
type Upgrade struct {
	Type       string         `json:"type"`
	Target     string         `json:"target"`
	FromLevel  int            `json:"fromLevel"`
	ToLevel    int            `json:"toLevel"`
	PowerGain  float64        `json:"powerGain"`
	BonusGain  float64        `json:"bonusGain,omitempty"`
	Cost       map[string]int `json:"cost,omitempty"`
	Efficiency float64        `json:"efficiency"`
	Priority   int            `json:"priority"`
	Confidence Confidence     `json:"confidence"`
	Reason     string         `json:"reason"`
}
