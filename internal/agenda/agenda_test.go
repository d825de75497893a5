package agenda

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendacal/internal/model"
)

func TestUpdateEvent(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("a", 3, 6), event("b", 5, 7))

	require.NoError(t, a.UpdateEvent("b", at(3), at(5)))
	b, _ := a.Event("b")
	assert.Equal(t, 50.0, b.Left, "layout re-runs after an update")

	err := a.UpdateEvent("ghost", at(1), at(2))
	assert.ErrorIs(t, err, ErrEventNotFound)

	err = a.UpdateEvent("a", at(6), at(6))
	assert.ErrorIs(t, err, ErrNonPositiveDuration)
	err = a.UpdateEvent("a", at(6), at(4))
	assert.ErrorIs(t, err, ErrNonPositiveDuration)

	e, _ := a.Event("a")
	assert.True(t, e.Start.Equal(at(3)))
	assert.True(t, e.End.Equal(at(6)))
}

func TestAddRejectsDuplicates(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("a", 3, 6))

	err := a.Add(event("a", 8, 9))
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Len(t, a.Events(), 1)

	require.NoError(t, a.Add(event("b", 8, 9)))
	card, ok := a.Card("b")
	require.True(t, ok)
	assert.Equal(t, 8*rowHeight, card.Top)
	assert.Equal(t, 20, a.Free())
}

func TestSetEventsKeepsSurvivingCards(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("a", 3, 6), event("b", 8, 9))
	card, _ := a.Card("a")
	card.DetailOpen = true

	require.NoError(t, a.SetEvents([]model.Event{event("a", 4, 6), event("c", 1, 2)}))

	card, ok := a.Card("a")
	require.True(t, ok)
	assert.True(t, card.DetailOpen)
	assert.Equal(t, 4*rowHeight, card.Top)

	_, ok = a.Card("b")
	assert.False(t, ok)

	err := a.SetEvents([]model.Event{event("x", 1, 2), event("x", 3, 4)})
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Len(t, a.Events(), 2, "a rejected replacement keeps the old collection")
}

func TestSetTopOffsetRepositionsIdleCards(t *testing.T) {
	a := New("test", testDay, Options{})
	require.NoError(t, a.SetRows(UniformRows(100, rowHeight)))
	require.NoError(t, a.SetEvents([]model.Event{event("a", 2, 4), event("b", 5, 6)}))

	bCard, _ := a.Card("b")
	require.NoError(t, a.HandlePointer("b", PointerEvent{Phase: PhaseDown, ClientY: 300}))
	topWhileDragging := bCard.Top

	a.SetTopOffset(100)

	aCard, _ := a.Card("a")
	assert.Equal(t, 2*rowHeight, aCard.Top)
	assert.Equal(t, topWhileDragging, bCard.Top, "active cards are left to their gesture")
}

func TestHandlePointerErrors(t *testing.T) {
	a := New("test", testDay, Options{})
	require.NoError(t, a.Add(event("a", 1, 2)))

	err := a.HandlePointer("a", PointerEvent{Phase: PhaseDown})
	assert.ErrorIs(t, err, ErrNoTimeslots)

	err = a.HandlePointer("ghost", PointerEvent{Phase: PhaseDown})
	assert.ErrorIs(t, err, ErrEventNotFound)

	require.NoError(t, a.SetRows(UniformRows(0, rowHeight)))
	err = a.HandlePointer("a", PointerEvent{Phase: Phase("hover")})
	assert.Error(t, err)
}

func TestPressDuringGestureIsIgnored(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100}))
	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ResizeFrom: EdgeBottom, ClientY: 190}))
	assert.IsType(t, Dragging{}, card.Gesture)
}

func TestCancel(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100}))
	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: 170}))
	require.NoError(t, a.Cancel("focus"))

	assert.IsType(t, Idle{}, card.Gesture)
	e, _ := a.Event("focus")
	assert.True(t, e.Start.Equal(at(5)), "edits made during the gesture are kept")
	assert.Equal(t, 5*rowHeight, card.Top)

	assert.NoError(t, a.Cancel("focus"), "cancelling an idle card is a no-op")
	assert.ErrorIs(t, a.Cancel("ghost"), ErrEventNotFound)
}

func TestMutationErrorsPropagate(t *testing.T) {
	a := newTestAgenda(0, Options{}, event("focus", 3, 6))
	card, _ := a.Card("focus")
	e, _ := a.Event("focus")
	boom := errors.New("store offline")

	drag := DragController{Mapper: a.Mapper(), Store: &recordingStore{err: boom}}
	drag.Start(card, 100, 1)
	assert.ErrorIs(t, drag.Move(card, e, 170), boom)
}

func TestObserverCountsRecomputes(t *testing.T) {
	obs := &countingObserver{}
	a := newTestAgenda(0, Options{Observer: obs}, event("focus", 3, 6))
	before := obs.recomputes

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseDown, ClientY: 100}))
	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: 110}))
	assert.Equal(t, before, obs.recomputes, "no recompute without a boundary change")
	assert.Empty(t, obs.mutations)

	require.NoError(t, a.HandlePointer("focus", PointerEvent{Phase: PhaseMove, ClientY: 170}))
	assert.Equal(t, before+1, obs.recomputes)
	assert.Equal(t, map[string]int{"dragging": 1}, obs.mutations)
}
