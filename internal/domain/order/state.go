package order

// OrderState implements the state pattern for the fulfilment lifecycle.
// Every transition not overridden by a state is rejected.
type OrderState interface {
	Status() Status
	OnConfirm(o *Order) (OrderState, error)
	OnProcess(o *Order) (OrderState, error)
	OnShip(o *Order) (OrderState, error)
	OnDeliver(o *Order) (OrderState, error)
	OnCancel(o *Order) (OrderState, error)
}

type rejectAll struct{}

func (rejectAll) OnConfirm(*Order) (OrderState, error) { return nil, ErrInvalidStateTransition }
func (rejectAll) OnProcess(*Order) (OrderState, error) { return nil, ErrInvalidStateTransition }
func (rejectAll) OnShip(*Order) (OrderState, error)    { return nil, ErrInvalidStateTransition }
func (rejectAll) OnDeliver(*Order) (OrderState, error) { return nil, ErrInvalidStateTransition }
func (rejectAll) OnCancel(*Order) (OrderState, error)  { return nil, ErrInvalidStateTransition }

func dispatch(s OrderState, o *Order, to Status) (OrderState, error) {
	switch to {
	case StatusConfirmed:
		return s.OnConfirm(o)
	case StatusProcessing:
		return s.OnProcess(o)
	case StatusShipped:
		return s.OnShip(o)
	case StatusDelivered:
		return s.OnDeliver(o)
	case StatusCancelled:
		return s.OnCancel(o)
	}
	return nil, ErrInvalidStateTransition
}

type pendingState struct{ rejectAll }

func (pendingState) Status() Status                       { return StatusPending }
func (pendingState) OnConfirm(*Order) (OrderState, error) { return confirmedState{}, nil }
func (pendingState) OnCancel(*Order) (OrderState, error)  { return cancelledState{}, nil }

type confirmedState struct{ rejectAll }

func (confirmedState) Status() Status                       { return StatusConfirmed }
func (confirmedState) OnProcess(*Order) (OrderState, error) { return processingState{}, nil }
func (confirmedState) OnCancel(*Order) (OrderState, error)  { return cancelledState{}, nil }

type processingState struct{ rejectAll }

func (processingState) Status() Status                      { return StatusProcessing }
func (processingState) OnShip(*Order) (OrderState, error)   { return shippedState{}, nil }
func (processingState) OnCancel(*Order) (OrderState, error) { return cancelledState{}, nil }

type shippedState struct{ rejectAll }

func (shippedState) Status() Status                       { return StatusShipped }
func (shippedState) OnDeliver(*Order) (OrderState, error) { return deliveredState{}, nil }

type deliveredState struct{ rejectAll }

func (deliveredState) Status() Status { return StatusDelivered }

type cancelledState struct{ rejectAll }

func (cancelledState) Status() Status { return StatusCancelled }

func stateFor(s Status) OrderState {
	switch s {
	case StatusConfirmed:
		return confirmedState{}
	case StatusProcessing:
		return processingState{}
	case StatusShipped:
		return shippedState{}
	case StatusDelivered:
		return deliveredState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return pendingState{}
	}
}
