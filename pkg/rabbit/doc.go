// Package rabbit provides types, interfaces, and helpers for working with the
// Rabbit REST API.
//
// # Overview
//
// The rabbit package defines the domain types (e.g., User, SSHKey,
// ImpersonationToken, Email, CustomAttribute) and the interfaces for
// resource-oriented clients (e.g., UsersClient, SSHKeysClient). A concrete
// implementation of these clients is provided by the rabbitclient package,
// which wires configuration, transport, authentication, and caching. Most
// consumers should import rabbitclient to construct a client and then
// interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/rabbitz-io/rabbit/pkg/rabbit"
//	  "github.com/rabbitz-io/rabbit/pkg/rabbitclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := rabbitclient.New(&rabbit.Config{
//	    BaseURL: "https://rabbit.example.com",
//	    Token:   "glpat-...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of users
//	  users, err := cli.Users().List(ctx, &rabbit.ListUsersOptions{PerPage: 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Queries and pagination
//
// Use QueryParams to express common list options (page, per_page, order_by,
// sort, search, scalar and repeated filters). List endpoints report their
// pagination state through response headers (X-Total, X-Total-Pages, X-Page,
// X-Next-Page); Pager reads them after each fetch and drains pages lazily:
//
//	pager, err := cli.Users().Pager(ctx, nil)
//	if err != nil { /* handle error */ }
//	for pager.HasNext() {
//	  user, err := pager.Next()
//	  if err != nil { break }
//	  _ = user
//	}
//
// or fetch everything at once with ListAll, or page by page with Stream.
// Servers may omit the total headers on expensive listings; Pager then
// reports totals as -1 and keeps walking until it sees a short page.
//
// # Errors
//
// Failures are represented by *Error with a Kind (Transport, StatusMismatch,
// Authorization, Decode, InvalidArgument) and a wrapped cause. Helpers such
// as IsNotFound, IsUnauthorized, and IsInvalidArgument make it easy to
// branch on common cases. Lookups that may legitimately find nothing have
// Result variants returning a Result[T] that distinguishes empty from failed.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, custom headers, metrics, rate limiting, circuit
// breaking) and a pluggable Cache abstraction with in-memory and NATS KV
// backends. The rabbitclient package composes these pieces for a sensible
// default client; applications with advanced needs can also use these
// primitives directly.
package rabbit
