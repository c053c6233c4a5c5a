package events

import "time"

type ActionKind int

const (
	Search ActionKind = iota
	FilterChange
	CartAdd
	CartRemove
	PromoApplied
	PromoRejected
	ReviewSubmitted
	CartCleared
)

var kindNames = map[ActionKind]string{
	Search:          "search",
	FilterChange:    "filter",
	CartAdd:         "cart_add",
	CartRemove:      "cart_remove",
	PromoApplied:    "promo_applied",
	PromoRejected:   "promo_rejected",
	ReviewSubmitted: "review",
	CartCleared:     "cart_clear",
}

func (k ActionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// UserAction is one storefront interaction, keyed by session when produced
// to Kafka. Only the fields relevant to Kind are filled.
type UserAction struct {
	SessionId string
	Kind      ActionKind
	At        int64
	ProductId int
	Quantity  int
	Query     string
	Filters   string
	PromoCode string
	Percent   int
	Rating    int
}

func NewUserAction(sessionID string, kind ActionKind) UserAction {
	return UserAction{
		SessionId: sessionID,
		Kind:      kind,
		At:        time.Now().UnixMilli(),
	}
}
