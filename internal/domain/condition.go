package domain

// Condition is the item wear severity scale. The order is total:
// like_new < good < fair < worn.
type Condition string

const (
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionWorn    Condition = "worn"
)

var conditionRank = map[Condition]int{
	ConditionLikeNew: 0,
	ConditionGood:    1,
	ConditionFair:    2,
	ConditionWorn:    3,
}

func (c Condition) Valid() bool {
	_, ok := conditionRank[c]
	return ok
}

// ConditionDegraded reports whether the item came back in worse condition
// than it left. Equal or improved condition is never degraded. This single
// comparison decides between automatic settlement and the damage-claim path.
func ConditionDegraded(atPickup, atReturn Condition) bool {
	return conditionRank[atReturn] > conditionRank[atPickup]
}
