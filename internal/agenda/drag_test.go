package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragShiftsBothBoundaries(t *testing.T) {
	for _, offset := range []float64{0, 50} {
		a := newTestAgenda(offset, Options{}, event("focus", 3, 6))
		card, _ := a.Card("focus")
		require.Equal(t, 3*rowHeight, card.Top)

		press := offset + 100
		require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: press}))
		assert.IsType(t, Dragging{}, card.Gesture)

		// 70px down puts the card top inside the 5 o'clock row.
		require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: press + 70}))
		assert.Equal(t, 3*rowHeight+70, card.Top, "card follows the pointer while dragging")

		e, _ := a.Event("focus")
		assert.True(t, e.Start.Equal(at(5)), "offset %v: start %s", offset, e.Start)
		assert.True(t, e.End.Equal(at(8)), "offset %v: end %s", offset, e.End)
		assert.Equal(t, at(6).Sub(at(3)), e.End.Sub(e.Start))

		require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseUp, ClientY: press + 70}))
		assert.IsType(t, Idle{}, card.Gesture)
		assert.Equal(t, 5*rowHeight, card.Top, "card snaps to the grid on release")
		assert.Equal(t, 3*rowHeight, card.Height)
	}
}

func TestDragWithinSameHourDoesNotMutate(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	store := &recordingStore{}
	card, _ := a.Card("focus")
	e, _ := a.Event("focus")

	drag := DragController{Mapper: a.Mapper(), Store: store}
	drag.Start(card, 100, 1)
	require.NoError(t, drag.Move(card, e, 110))

	assert.Empty(t, store.calls)
	assert.Equal(t, 3*rowHeight+10, card.Top)
}

func TestDragOutsideGridIsHarmless(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100}))
	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: -400}))

	e, _ := a.Event("focus")
	assert.True(t, e.Start.Equal(at(3)))

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseUp, ClientY: -400}))
	assert.Equal(t, 3*rowHeight, card.Top)
}

func TestDoubleClickTogglesDetailInsteadOfDragging(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100, Clicks: 2}))
	assert.True(t, card.DetailOpen)
	assert.IsType(t, Idle{}, card.Gesture)

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: 300}))
	e, _ := a.Event("focus")
	assert.True(t, e.Start.Equal(at(3)), "no drag after a double click")

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100, Clicks: 2}))
	assert.False(t, card.DetailOpen)
}

func TestDragRelayoutsAllEvents(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("a", 3, 6), event("b", 5, 7))

	b, _ := a.Event("b")
	assert.Equal(t, 2.0, b.Left, "b starts while a is ongoing")

	bCard, _ := a.Card("b")
	require.NoError(t, a.HandlePointer("b", PointerEvent{Phase: PhaseDown, ClientY: bCard.Top + 5}))
	// Row boundaries resolve to the earlier row, so land a few px inside 3.
	require.NoError(t, a.HandlePointer("b", PointerEvent{Phase: PhaseMove, ClientY: bCard.Top + 10 - 2*rowHeight}))

	ea, _ := a.Event("a")
	eb, _ := a.Event("b")
	assert.True(t, eb.Start.Equal(at(3)))
	assert.Equal(t, 0.0, ea.Left)
	assert.Equal(t, 50.0, ea.Right)
	assert.Equal(t, 50.0, eb.Left)
	assert.Equal(t, 0.0, eb.Right)
	assert.Equal(t, ActiveZIndex, bCard.ZIndex(eb))
	aCard, _ := a.Card("a")
	assert.Equal(t, 3, aCard.ZIndex(ea))
}

func TestDragEndWithoutDragIsNoop(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")
	card.Top = 12

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseUp, ClientY: 0}))
	assert.Equal(t, 12.0, card.Top)
}
