package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// Client calls a BillService over HTTP.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	token      string
	opts       []connect.ClientOption
}

// NewClient returns a client for the service at baseURL (e.g. "http://localhost:8080").
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...),
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.token = token
	return &out
}

func call[Req, Res any](ctx context.Context, c *Client, procedure string, msg *Req) (*Res, error) {
	client := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)
	req := connect.NewRequest(msg)
	if c.token != "" {
		req.Header().Set("Authorization", "Bearer "+c.token)
	}
	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// CreateSession starts a new bill. Use WithToken(resp.Token) for later calls.
func (c *Client) CreateSession(ctx context.Context, seed bool) (*CreateSessionResponse, error) {
	return call[CreateSessionRequest, CreateSessionResponse](ctx, c, CreateSessionProcedure, &CreateSessionRequest{Seed: seed})
}

func (c *Client) DeleteSession(ctx context.Context) error {
	_, err := call[DeleteSessionRequest, DeleteSessionResponse](ctx, c, DeleteSessionProcedure, &DeleteSessionRequest{})
	return err
}

// RefreshSession returns a new token for the current session. Tokens expire a
// session TTL after issue, so long-lived clients refresh before that.
func (c *Client) RefreshSession(ctx context.Context) (string, error) {
	resp, err := call[RefreshSessionRequest, RefreshSessionResponse](ctx, c, RefreshSessionProcedure, &RefreshSessionRequest{})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	return call[GetSnapshotRequest, Snapshot](ctx, c, GetSnapshotProcedure, &GetSnapshotRequest{})
}

func (c *Client) AddParticipant(ctx context.Context, name string) (*Snapshot, error) {
	return call[AddParticipantRequest, Snapshot](ctx, c, AddParticipantProcedure, &AddParticipantRequest{Name: name})
}

func (c *Client) RenameParticipant(ctx context.Context, id int, name string) (*Snapshot, error) {
	return call[RenameParticipantRequest, Snapshot](ctx, c, RenameParticipantProcedure,
		&RenameParticipantRequest{ParticipantID: id, Name: name})
}

func (c *Client) RemoveParticipant(ctx context.Context, id int) (*Snapshot, error) {
	return call[RemoveParticipantRequest, Snapshot](ctx, c, RemoveParticipantProcedure,
		&RemoveParticipantRequest{ParticipantID: id})
}

func (c *Client) RemoveParticipants(ctx context.Context, ids []int) (*Snapshot, error) {
	return call[RemoveParticipantsRequest, Snapshot](ctx, c, RemoveParticipantsProcedure,
		&RemoveParticipantsRequest{ParticipantIDs: ids})
}

func (c *Client) AddItem(ctx context.Context, name string) (*Snapshot, error) {
	return call[AddItemRequest, Snapshot](ctx, c, AddItemProcedure, &AddItemRequest{Name: name})
}

func (c *Client) RenameItem(ctx context.Context, id int, name string) (*Snapshot, error) {
	return call[RenameItemRequest, Snapshot](ctx, c, RenameItemProcedure, &RenameItemRequest{ItemID: id, Name: name})
}

func (c *Client) RemoveItem(ctx context.Context, id int) (*Snapshot, error) {
	return call[RemoveItemRequest, Snapshot](ctx, c, RemoveItemProcedure, &RemoveItemRequest{ItemID: id})
}

func (c *Client) RemoveItems(ctx context.Context, ids []int) (*Snapshot, error) {
	return call[RemoveItemsRequest, Snapshot](ctx, c, RemoveItemsProcedure, &RemoveItemsRequest{ItemIDs: ids})
}

func (c *Client) SetPrice(ctx context.Context, itemID int, price float64) (*Snapshot, error) {
	return call[SetPriceRequest, Snapshot](ctx, c, SetPriceProcedure, &SetPriceRequest{ItemID: itemID, Price: price})
}

func (c *Client) ToggleConsumer(ctx context.Context, itemID, participantID int) (*Snapshot, error) {
	return call[ToggleConsumerRequest, Snapshot](ctx, c, ToggleConsumerProcedure,
		&ToggleConsumerRequest{ItemID: itemID, ParticipantID: participantID})
}

func (c *Client) SetTotalPortions(ctx context.Context, itemID, total int) (*Snapshot, error) {
	return call[SetTotalPortionsRequest, Snapshot](ctx, c, SetTotalPortionsProcedure,
		&SetTotalPortionsRequest{ItemID: itemID, TotalPortions: total})
}

func (c *Client) SetMemberPortion(ctx context.Context, itemID, participantID, portions int) (*Snapshot, error) {
	return call[SetMemberPortionRequest, Snapshot](ctx, c, SetMemberPortionProcedure,
		&SetMemberPortionRequest{ItemID: itemID, ParticipantID: participantID, Portions: portions})
}

func (c *Client) SetDiscountExempt(ctx context.Context, itemID int, exempt bool) (*Snapshot, error) {
	return call[SetDiscountExemptRequest, Snapshot](ctx, c, SetDiscountExemptProcedure,
		&SetDiscountExemptRequest{ItemID: itemID, Exempt: exempt})
}

func (c *Client) SetDiscountPercent(ctx context.Context, percent float64) (*Snapshot, error) {
	return call[SetDiscountPercentRequest, Snapshot](ctx, c, SetDiscountPercentProcedure,
		&SetDiscountPercentRequest{Percent: percent})
}
