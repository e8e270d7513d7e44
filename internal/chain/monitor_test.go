package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmedTargetLagsHead(t *testing.T) {
	m := &Monitor{confirmations: 12, lastBlock: 100}

	// Head at 120: only blocks up to 108 are deep enough.
	target, ok := m.confirmedTarget(120)
	assert.True(t, ok)
	assert.Equal(t, uint64(108), target)

	// Head advanced by one: one more confirmed block.
	m.lastBlock = 108
	target, ok = m.confirmedTarget(121)
	assert.True(t, ok)
	assert.Equal(t, uint64(109), target)
}

func TestConfirmedTargetWaitsForDepth(t *testing.T) {
	m := &Monitor{confirmations: 12, lastBlock: 100}

	// Everything beyond lastBlock is still within the reorg window.
	_, ok := m.confirmedTarget(112)
	assert.False(t, ok)

	// A chain shorter than the confirmation depth has nothing to scan.
	m.lastBlock = 0
	_, ok = m.confirmedTarget(5)
	assert.False(t, ok)
}

func TestConfirmedTargetZeroDepthScansToHead(t *testing.T) {
	m := &Monitor{confirmations: 0, lastBlock: 100}

	target, ok := m.confirmedTarget(105)
	assert.True(t, ok)
	assert.Equal(t, uint64(105), target)

	_, ok = m.confirmedTarget(100)
	assert.False(t, ok)
}
