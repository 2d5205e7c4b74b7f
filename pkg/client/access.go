package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// AccessResult is the outcome of a role access check
type AccessResult struct {
	Status int
	Data   map[string]interface{}
}

// Allowed reports whether the server accepted the check
func (r AccessResult) Allowed() bool {
	return r.Status >= 200 && r.Status < 300
}

// CheckClientAccess asks the server whether the stored token may act as a client.
// Without a client token locally no request is made.
func (c *Client) CheckClientAccess(ctx context.Context) AccessResult {
	if !c.IsClientAuthenticated() {
		return AccessResult{Status: http.StatusForbidden, Data: map[string]interface{}{"message": "Not authenticated as client"}}
	}
	return c.checkAccess(ctx, "/api/v1/client")
}

// CheckWorkerAccess asks the server whether the stored token may act as a worker
func (c *Client) CheckWorkerAccess(ctx context.Context) AccessResult {
	if !c.IsWorkerAuthenticated() {
		return AccessResult{Status: http.StatusForbidden, Data: map[string]interface{}{"message": "Not authenticated as worker"}}
	}
	return c.checkAccess(ctx, "/api/v1/hair")
}

func (c *Client) checkAccess(ctx context.Context, path string) AccessResult {
	var data map[string]interface{}
	err := c.Do(ctx, http.MethodGet, path, nil, &data)
	if err == nil {
		return AccessResult{Status: http.StatusOK, Data: data}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		result := AccessResult{Status: httpErr.Status}
		if json.Unmarshal(httpErr.Body, &result.Data) == nil {
			return result
		}
		result.Data = map[string]interface{}{"message": string(httpErr.Body)}
		return result
	}

	c.logger.Error("Access check %s failed: %v", path, err)
	return AccessResult{Status: http.StatusInternalServerError, Data: map[string]interface{}{"message": "Server error"}}
}

// Store is the store summary returned with a connection check
type Store struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	OwnerID     int64   `json:"owner_id"`
}

// StoreOwnership tells whether the caller owns a store
type StoreOwnership struct {
	IsStoreOwner bool   `json:"isStoreOwner"`
	StoreID      *int64 `json:"storeId"`
	StoreName    string `json:"storeName"`
}

// StoreConnection tells whether the caller works at a store
type StoreConnection struct {
	IsConnectedToStore bool   `json:"isConnectedToStore"`
	Store              *Store `json:"store"`
	Role               string `json:"role"`
}

// CheckStoreOwner reports the caller's owned store; any failure reads as not an owner
func (c *Client) CheckStoreOwner(ctx context.Context) StoreOwnership {
	var result StoreOwnership
	if err := c.Do(ctx, http.MethodGet, "/api/v1/isStoreOwner", nil, &result); err != nil {
		c.logger.Error("Store owner check failed: %v", err)
		return StoreOwnership{}
	}
	return result
}

// CheckStoreConnection reports the store the caller works at; any failure reads as not connected
func (c *Client) CheckStoreConnection(ctx context.Context) StoreConnection {
	var result StoreConnection
	if err := c.Do(ctx, http.MethodGet, "/api/v1/is-connected-to-store", nil, &result); err != nil {
		c.logger.Error("Store connection check failed: %v", err)
		return StoreConnection{}
	}
	return result
}
