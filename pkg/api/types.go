// Package api defines the wire types of the tabsplit BillService and a typed
// client for it. Messages travel as JSON over the Connect protocol.
package api

// ServiceName is the fully-qualified name of the bill service.
const ServiceName = "tabsplit.v1.BillService"

// Procedure paths, one per RPC.
const (
	CreateSessionProcedure      = "/" + ServiceName + "/CreateSession"
	DeleteSessionProcedure      = "/" + ServiceName + "/DeleteSession"
	RefreshSessionProcedure     = "/" + ServiceName + "/RefreshSession"
	GetSnapshotProcedure        = "/" + ServiceName + "/GetSnapshot"
	AddParticipantProcedure     = "/" + ServiceName + "/AddParticipant"
	RenameParticipantProcedure  = "/" + ServiceName + "/RenameParticipant"
	RemoveParticipantProcedure  = "/" + ServiceName + "/RemoveParticipant"
	RemoveParticipantsProcedure = "/" + ServiceName + "/RemoveParticipants"
	AddItemProcedure            = "/" + ServiceName + "/AddItem"
	RenameItemProcedure         = "/" + ServiceName + "/RenameItem"
	RemoveItemProcedure         = "/" + ServiceName + "/RemoveItem"
	RemoveItemsProcedure        = "/" + ServiceName + "/RemoveItems"
	SetPriceProcedure           = "/" + ServiceName + "/SetPrice"
	ToggleConsumerProcedure     = "/" + ServiceName + "/ToggleConsumer"
	SetTotalPortionsProcedure   = "/" + ServiceName + "/SetTotalPortions"
	SetMemberPortionProcedure   = "/" + ServiceName + "/SetMemberPortion"
	SetDiscountExemptProcedure  = "/" + ServiceName + "/SetDiscountExempt"
	SetDiscountPercentProcedure = "/" + ServiceName + "/SetDiscountPercent"
)

type CreateSessionRequest struct {
	// Seed opens the bill with two people and one item instead of empty.
	Seed bool `json:"seed,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	Snapshot  *Snapshot `json:"snapshot"`
}

type DeleteSessionRequest struct{}

type DeleteSessionResponse struct{}

type RefreshSessionRequest struct{}

// RefreshSessionResponse carries a new token for the caller's session, valid
// for a full session TTL from now.
type RefreshSessionResponse struct {
	Token string `json:"token"`
}

type GetSnapshotRequest struct{}

type AddParticipantRequest struct {
	Name string `json:"name"`
}

type RenameParticipantRequest struct {
	ParticipantID int    `json:"participant_id"`
	Name          string `json:"name"`
}

type RemoveParticipantRequest struct {
	ParticipantID int `json:"participant_id"`
}

type RemoveParticipantsRequest struct {
	ParticipantIDs []int `json:"participant_ids"`
}

type AddItemRequest struct {
	Name string `json:"name"`
}

type RenameItemRequest struct {
	ItemID int    `json:"item_id"`
	Name   string `json:"name"`
}

type RemoveItemRequest struct {
	ItemID int `json:"item_id"`
}

type RemoveItemsRequest struct {
	ItemIDs []int `json:"item_ids"`
}

type SetPriceRequest struct {
	ItemID int     `json:"item_id"`
	Price  float64 `json:"price"`
}

type ToggleConsumerRequest struct {
	ItemID        int `json:"item_id"`
	ParticipantID int `json:"participant_id"`
}

type SetTotalPortionsRequest struct {
	ItemID        int `json:"item_id"`
	TotalPortions int `json:"total_portions"`
}

type SetMemberPortionRequest struct {
	ItemID        int `json:"item_id"`
	ParticipantID int `json:"participant_id"`
	Portions      int `json:"portions"`
}

type SetDiscountExemptRequest struct {
	ItemID int  `json:"item_id"`
	Exempt bool `json:"exempt"`
}

type SetDiscountPercentRequest struct {
	Percent float64 `json:"percent"`
}

// Participant is a person sharing the bill.
type Participant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item is a line on the bill.
type Item struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Price          float64     `json:"price"`
	Consumers      []int       `json:"consumers"`
	TotalPortions  int         `json:"total_portions"`
	Portions       map[int]int `json:"portions,omitempty"` // only set when TotalPortions > 1
	DiscountExempt bool        `json:"discount_exempt"`
}

// Share is one participant's part of one item.
type Share struct {
	ItemID        int     `json:"item_id"`
	ItemName      string  `json:"item_name"`
	Amount        float64 `json:"amount"`
	Portions      int     `json:"portions"`
	OriginalPrice float64 `json:"original_price"`
	Discounted    bool    `json:"discounted"`
}

// Warning flags a weighted item whose portions do not add up to its total.
type Warning struct {
	ItemID    int    `json:"item_id"`
	ItemName  string `json:"item_name"`
	Allocated int    `json:"allocated"`
	Total     int    `json:"total"`
}

// Snapshot is the full bill with its calculated split. Every command returns one.
type Snapshot struct {
	Participants    []Participant   `json:"participants"`
	Items           []Item          `json:"items"`
	DiscountPercent float64         `json:"discount_percent"`
	MemberTotals    map[int]float64 `json:"member_totals"`
	MemberShares    map[int][]Share `json:"member_shares"`
	TotalBill       float64         `json:"total_bill"`
	TotalDiscount   float64         `json:"total_discount"`
	Warnings        []Warning       `json:"warnings,omitempty"`
}
