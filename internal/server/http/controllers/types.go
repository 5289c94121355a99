package controllers

import "github.com/rzbill/uniqueid/pkg/uniqueid"

// idResp is the body of /v1/ids.
type idResp struct {
	ID string `json:"id"`
}

// batchResp is the body of /v1/ids/batch.
type batchResp struct {
	IDs []string `json:"ids"`
}

// decodeReq is the body of POST /v1/ids/decode.
type decodeReq struct {
	IDs    []string `json:"ids"`
	Filter string   `json:"filter"`
}

// decodedJSON is one decoded ID.
type decodedJSON struct {
	ID string `json:"id"`
	uniqueid.Fields
	Time string `json:"time"`
}

// decodeResp is the body of POST /v1/ids/decode.
type decodeResp struct {
	IDs []decodedJSON `json:"ids"`
}
