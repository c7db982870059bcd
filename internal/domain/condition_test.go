package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionDegraded(t *testing.T) {
	ladder := []Condition{ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn}

	for i, pickup := range ladder {
		for j, ret := range ladder {
			degraded := ConditionDegraded(pickup, ret)
			if j > i {
				assert.True(t, degraded, "%s -> %s should be degraded", pickup, ret)
			} else {
				assert.False(t, degraded, "%s -> %s should not be degraded", pickup, ret)
			}
		}
	}
}

func TestConditionValid(t *testing.T) {
	assert.True(t, ConditionGood.Valid())
	assert.True(t, ConditionWorn.Valid())
	assert.False(t, Condition("").Valid())
	assert.False(t, Condition("mint").Valid())
}
