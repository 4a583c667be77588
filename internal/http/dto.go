package httpapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type checkoutItemRequest struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Price     money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
}

type deliveryRequest struct {
	Type         string `json:"type"`
	Address      string `json:"address"`
	Instructions string `json:"instructions"`
}

type checkoutRequest struct {
	CustomerID    string                `json:"customerId"`
	CartID        string                `json:"cartId"`
	Items         []checkoutItemRequest `json:"items"`
	Delivery      deliveryRequest       `json:"delivery"`
	PaymentMethod string                `json:"paymentMethod"`
	Notes         string                `json:"notes"`
}

func (r checkoutRequest) toDomain() checkout.Request {
	items := make([]checkout.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, checkout.ItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  it.Category,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return checkout.Request{
		CustomerID: strings.TrimSpace(r.CustomerID),
		CartID:     strings.TrimSpace(r.CartID),
		Items:      items,
		Delivery: checkout.DeliveryInput{
			Type:         order.DeliveryType(strings.ToUpper(strings.TrimSpace(r.Delivery.Type))),
			Address:      r.Delivery.Address,
			Instructions: r.Delivery.Instructions,
		},
		PaymentMethod: order.PaymentMethod(strings.ToUpper(strings.TrimSpace(r.PaymentMethod))),
		Notes:         r.Notes,
	}
}

type paymentConfigResponse struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"initPoint"`
}

type summaryResponse struct {
	Subtotal      money.Money `json:"subtotal"`
	ShippingCost  money.Money `json:"shippingCost"`
	Total         money.Money `json:"total"`
	ItemCount     int         `json:"itemCount"`
	PaymentMethod string      `json:"paymentMethod"`
	DeliveryType  string      `json:"deliveryType"`
	Formatted     string      `json:"formattedTotal,omitempty"`
}

type checkoutResponse struct {
	OrderID       string                 `json:"orderId"`
	Status        string                 `json:"status"`
	PaymentConfig *paymentConfigResponse `json:"paymentConfig,omitempty"`
	Summary       summaryResponse        `json:"summary"`
}

func newCheckoutResponse(res *checkout.Result) checkoutResponse {
	out := checkoutResponse{
		OrderID: res.Order.ID(),
		Status:  string(res.Order.Status()),
		Summary: summaryResponse{
			Subtotal:      res.Summary.Subtotal,
			ShippingCost:  res.Summary.ShippingCost,
			Total:         res.Summary.Total,
			ItemCount:     res.Summary.ItemCount,
			PaymentMethod: string(res.Summary.PaymentMethod),
			DeliveryType:  string(res.Summary.DeliveryType),
			Formatted:     res.Summary.FormattedTotal,
		},
	}
	if res.PaymentConfig != nil {
		out.PaymentConfig = &paymentConfigResponse{
			PreferenceID: res.PaymentConfig.PreferenceID,
			InitPoint:    res.PaymentConfig.InitPoint,
		}
	}
	return out
}

// flexibleID accepts both JSON strings and numbers, since gateways send
// notification and payment ids either way.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

type webhookRequest struct {
	ID     flexibleID `json:"id"`
	Type   string     `json:"type"`
	Action string     `json:"action"`
	Data   struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

func (r webhookRequest) toDomain() checkout.Notification {
	return checkout.Notification{
		ID:     string(r.ID),
		Type:   r.Type,
		Action: r.Action,
		DataID: string(r.Data.ID),
	}
}

type webhookResponse struct {
	Outcome string `json:"outcome"`
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type refundRequest struct {
	Amount *money.Money `json:"amount"`
	Reason string       `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type addItemRequest struct {
	OwnerID   string      `json:"ownerId"`
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type amountRequest struct {
	Amount money.Money `json:"amount"`
}
