package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListOrders returns line items for every storefront product linked to the
// practitioner's protocols, joined with order and buyer data.
func (a *App) ListOrders(w http.ResponseWriter, r *http.Request) {
	practitioner, err := a.currentPractitioner(r.Context())
	if err != nil {
		a.failErr(w, err)
		return
	}
	protocols, err := a.Protocols.ProtocolsByPractitioner(r.Context(), practitioner.ID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	var productIDs []int64
	for _, protocol := range protocols {
		if protocol.ShopifyProductID != 0 {
			productIDs = append(productIDs, protocol.ShopifyProductID)
		}
	}
	items, err := a.Orders.ListLineItemsByProductIDs(r.Context(), productIDs)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]any{"items": items})
}

// OrderItems returns every line item of one order.
func (a *App) OrderItems(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentPractitioner(r.Context()); err != nil {
		a.failErr(w, err)
		return
	}
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		a.fail(w, http.StatusBadRequest, "invalid order id")
		return
	}
	items, err := a.Orders.ListOrderItems(r.Context(), orderID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, http.StatusOK, map[string]any{"items": items})
}
