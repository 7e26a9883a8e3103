package handlers

import (
	"net/http"

	"github.com/gnuweeb/gwring"
	"github.com/gnuweeb/gwring/internal/opargs"
)

func init() {
	gwring.RegisterHandler(gwring.OpHTTPGet, HTTPGet)
}

// HTTPGet implements OpHTTPGet: issues an HTTP GET against the URL
// pointed to by Args[0] and returns the response status code, or
// gwring.ResDispatchFailed on any transport error.
//
// This generalizes the original ring's Telegram-specific
// GW_RING_OP_TG_GET_UPDATES handler: same shape (a blocking I/O call
// on a worker goroutine, completing with a status-like res), without
// the bot-specific payload.
func HTTPGet(args opargs.Args) int64 {
	u := (*string)(args.Ptr(0))
	resp, err := http.Get(*u)
	if err != nil {
		return gwring.ResDispatchFailed
	}
	defer resp.Body.Close()
	return int64(resp.StatusCode)
}
