package order

type Status string

const (
	StatusPendingPayment  Status = "PENDING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusPaymentRejected Status = "PAYMENT_REJECTED"
	StatusInPreparation   Status = "IN_PREPARATION"
	StatusReady           Status = "READY"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
)

// A rejected payment may be retried, so PAYMENT_REJECTED can still reach PAID.
var transitions = map[Status][]Status{
	StatusPendingPayment:  {StatusPaid, StatusPaymentRejected, StatusCancelled},
	StatusPaymentRejected: {StatusPaid, StatusCancelled},
	StatusPaid:            {StatusInPreparation, StatusCancelled},
	StatusInPreparation:   {StatusReady, StatusCancelled},
	StatusReady:           {StatusDelivered, StatusCancelled},
	StatusDelivered:       nil,
	StatusCancelled:       nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", ErrInvalidStatus.Withf("unknown order status %q", v)
	}
	return s, nil
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsFinal reports whether a gateway notification can no longer change the
// payment.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentApproved || s == PaymentRejected || s == PaymentRefunded
}

type PaymentMethod string

const (
	MethodGateway      PaymentMethod = "GATEWAY"
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodGateway, MethodCash, MethodBankTransfer:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "PICKUP"
	DeliveryDelivery DeliveryType = "DELIVERY"
)

func (t DeliveryType) Valid() bool {
	return t == DeliveryPickup || t == DeliveryDelivery
}
