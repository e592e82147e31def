// Package embedefy is a narrow adapter for the Embedefy embeddings endpoint.
//
// A call goes through two stages. The Executor issues exactly one POST and
// collects the raw body and status code. Interpret then classifies the body
// into one of three outcomes: Success, *APIError or *FormatError. The error
// field always wins over the inputs field, because the service may send
// partial success-like data alongside an error.
//
// The package performs no retries, pooling or caching.
package embedefy
