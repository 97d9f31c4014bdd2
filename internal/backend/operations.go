package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/returns"
)

type itemEnvelope struct {
	Data catalog.Item `json:"data"`
}

// ItemByCode implements catalog.Lookup against the backend item-lookup
// endpoint. A missing code maps to catalog.ErrNotFound.
func (c *Client) ItemByCode(ctx context.Context, code string) (catalog.Item, error) {
	query := url.Values{"code": {code}}
	var envelope itemEnvelope
	err := c.do(ctx, "item_by_code", http.MethodGet, "/api/v1/items/lookup", query, nil, &envelope)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return catalog.Item{}, catalog.ErrNotFound
		}
		return catalog.Item{}, err
	}
	return envelope.Data, nil
}

type originLineDTO struct {
	ItemID       int64               `json:"itemId"`
	VariantID    int64               `json:"variantId"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unitPrice"`
	Discounts    []document.Discount `json:"discounts"`
	DisplayName  string              `json:"itemName"`
	VariantLabel string              `json:"unit"`
}

type originDTO struct {
	InvoiceNumber    string          `json:"invoiceNumber"`
	CounterpartyCode string          `json:"counterpartyCode"`
	Branch           string          `json:"branch"`
	TaxPercentage    decimal.Decimal `json:"taxPercentage"`
	Items            []originLineDTO `json:"items"`
}

type originEnvelope struct {
	Data originDTO `json:"data"`
}

// InvoiceByNumber implements returns.Source. A missing invoice maps to
// ErrInvoiceNotFound.
func (c *Client) InvoiceByNumber(ctx context.Context, number string) (returns.Origin, error) {
	var envelope originEnvelope
	err := c.do(ctx, "invoice_by_number", http.MethodGet, "/api/v1/invoices/"+url.PathEscape(number), nil, nil, &envelope)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return returns.Origin{}, ErrInvoiceNotFound
		}
		return returns.Origin{}, err
	}
	origin := returns.Origin{
		InvoiceNumber:    envelope.Data.InvoiceNumber,
		CounterpartyCode: envelope.Data.CounterpartyCode,
		Branch:           envelope.Data.Branch,
		TaxPct:           envelope.Data.TaxPercentage,
	}
	for _, line := range envelope.Data.Items {
		origin.Lines = append(origin.Lines, returns.OriginLine{
			ItemID:       line.ItemID,
			VariantID:    line.VariantID,
			Qty:          line.Quantity,
			UnitPrice:    line.UnitPrice,
			Discounts:    line.Discounts,
			DisplayName:  line.DisplayName,
			VariantLabel: line.VariantLabel,
		})
	}
	return origin, nil
}

// Member is a verified counterparty record.
type Member struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type memberEnvelope struct {
	Data Member `json:"data"`
}

// MemberByCode verifies a counterparty code. A missing code maps to
// ErrMemberNotFound.
func (c *Client) MemberByCode(ctx context.Context, code string) (Member, error) {
	query := url.Values{"code": {code}}
	var envelope memberEnvelope
	err := c.do(ctx, "member_by_code", http.MethodGet, "/api/v1/members/lookup", query, nil, &envelope)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return envelope.Data, nil
}

type idEnvelope struct {
	Data struct {
		ID int64 `json:"id"`
	} `json:"data"`
}

// CreateDocument submits a new document and returns its backend identifier.
func (c *Client) CreateDocument(ctx context.Context, kind document.Kind, payload document.Payload) (int64, error) {
	var envelope idEnvelope
	op := "create_" + kind.String()
	if err := c.do(ctx, op, http.MethodPost, kindPath(kind), nil, payload, &envelope); err != nil {
		return 0, err
	}
	return envelope.Data.ID, nil
}

// UpdateDocument replaces an existing document.
func (c *Client) UpdateDocument(ctx context.Context, kind document.Kind, id int64, payload document.Payload) error {
	op := "update_" + kind.String()
	path := fmt.Sprintf("%s/%s", kindPath(kind), strconv.FormatInt(id, 10))
	return c.do(ctx, op, http.MethodPut, path, nil, payload, nil)
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, kind document.Kind, id int64) error {
	op := "delete_" + kind.String()
	path := fmt.Sprintf("%s/%s", kindPath(kind), strconv.FormatInt(id, 10))
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}
