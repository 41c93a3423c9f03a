package quippath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/quippath"
)

func TestRootIsEmpty(t *testing.T) {
	root := quippath.Root()
	assert.True(t, root.IsRoot())
	assert.Equal(t, 0, root.Len())
	assert.Equal(t, "/", root.String())
	assert.True(t, root.ID().IsNil())
}

func TestAppendSupervisorChain(t *testing.T) {
	root := quippath.Root()

	sup1, err := root.Append(quippath.KindSupervisor, "root", id.New())
	require.NoError(t, err)
	assert.Equal(t, 1, sup1.Len())

	sup2, err := sup1.Append(quippath.KindSupervisor, "workers-sup", id.New())
	require.NoError(t, err)
	assert.Equal(t, 2, sup2.Len())
}

func TestAppendChildrenRequiresSupervisorTail(t *testing.T) {
	root := quippath.Root()

	_, err := root.Append(quippath.KindChildren, "workers", id.New())
	assert.ErrorIs(t, err, quippath.ErrInvalidAppend)

	sup, err := root.Append(quippath.KindSupervisor, "root", id.New())
	require.NoError(t, err)

	kids, err := sup.Append(quippath.KindChildren, "workers", id.New())
	require.NoError(t, err)
	assert.Equal(t, 2, kids.Len())
}

func TestAppendChildRequiresChildrenTail(t *testing.T) {
	root := quippath.Root()
	sup, _ := root.Append(quippath.KindSupervisor, "root", id.New())

	_, err := sup.Append(quippath.KindChild, "worker-1", id.New())
	assert.ErrorIs(t, err, quippath.ErrInvalidAppend)

	kids, _ := sup.Append(quippath.KindChildren, "workers", id.New())
	child, err := kids.Append(quippath.KindChild, "worker-1", id.New())
	require.NoError(t, err)
	assert.Equal(t, 3, child.Len())

	tail, ok := child.Tail()
	require.True(t, ok)
	assert.Equal(t, quippath.KindChild, tail.Kind)
	assert.Equal(t, "worker-1", tail.Name)
}

func TestAppendChildCannotFollowChild(t *testing.T) {
	root := quippath.Root()
	sup, _ := root.Append(quippath.KindSupervisor, "root", id.New())
	kids, _ := sup.Append(quippath.KindChildren, "workers", id.New())
	child, _ := kids.Append(quippath.KindChild, "worker-1", id.New())

	_, err := child.Append(quippath.KindChild, "worker-2", id.New())
	assert.ErrorIs(t, err, quippath.ErrInvalidAppend)
}

func TestAppendEmptyName(t *testing.T) {
	root := quippath.Root()
	_, err := root.Append(quippath.KindSupervisor, "", id.New())
	assert.ErrorIs(t, err, quippath.ErrEmptyName)
}

func TestAppendIsImmutable(t *testing.T) {
	root := quippath.Root()
	sup, _ := root.Append(quippath.KindSupervisor, "root", id.New())
	_, _ = sup.Append(quippath.KindChildren, "workers", id.New())

	assert.Equal(t, 1, sup.Len(), "appending from sup must not mutate sup itself")
}

func TestIsDeadLetters(t *testing.T) {
	root := quippath.Root()
	sup, _ := root.Append(quippath.KindSupervisor, quippath.DeadLettersSupervisorName, id.New())
	kids, _ := sup.Append(quippath.KindChildren, quippath.DeadLettersGroupName, id.New())
	child, _ := kids.Append(quippath.KindChild, "sink", id.New())

	assert.True(t, child.IsDeadLetters())
	assert.True(t, child.ID().IsNil(), "dead-letters id must be nil per original_source semantics")

	notDead, _ := kids.Append(quippath.KindChild, "sink", id.New())
	otherSup, _ := root.Append(quippath.KindSupervisor, "other", id.New())
	otherKids, _ := otherSup.Append(quippath.KindChildren, quippath.DeadLettersGroupName, id.New())
	otherChild, _ := otherKids.Append(quippath.KindChild, "sink", id.New())
	assert.False(t, otherChild.IsDeadLetters())
	_ = notDead
}

func TestEqual(t *testing.T) {
	nodeID := id.New()
	root := quippath.Root()
	a, _ := root.Append(quippath.KindSupervisor, "root", nodeID)
	b, _ := root.Append(quippath.KindSupervisor, "root", nodeID)
	assert.True(t, a.Equal(b))

	c, _ := root.Append(quippath.KindSupervisor, "root", id.New())
	assert.False(t, a.Equal(c))
}

func TestStringRendersChain(t *testing.T) {
	root := quippath.Root()
	sup, _ := root.Append(quippath.KindSupervisor, "root", id.New())
	kids, _ := sup.Append(quippath.KindChildren, "workers", id.New())
	child, _ := kids.Append(quippath.KindChild, "worker-3", id.New())

	assert.Equal(t, "/root/workers/worker-3", child.String())
}

func TestSignatureRoundTrip(t *testing.T) {
	p, _ := quippath.Root().Append(quippath.KindSupervisor, "root", id.New())
	sig := quippath.NewSignature(p, nil)

	assert.True(t, sig.Path().Equal(p))
	assert.Nil(t, sig.Channel())
	assert.False(t, sig.IsDeadLetters())
}
