// Package rabbitclient provides the primary entry point for constructing a
// Rabbit API client that implements the rabbit.Client interface.
//
// It layers configuration, HTTP transport, authentication, and caching on
// top of the resource interfaces and types defined in the rabbit package.
// Most applications should import rabbitclient to build a client, then use
// the returned rabbit.Client to access resource-specific clients, for
// example Users(), SSHKeys(), Emails().
//
// Quick start
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
//
//	  // With a private token:
//	  cli, err := rabbitclient.New(&rabbit.Config{
//	    BaseURL: "https://rabbit.example.com",
//	    Token:   "glpat-...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an OAuth access token:
//	  cli, err = rabbitclient.New(&rabbit.Config{
//	    BaseURL:   "https://rabbit.example.com",
//	    TokenType: rabbit.TokenTypeAccess,
//	    Token:     "eyJhbGciOi...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the rabbit.Client interface
//	  user, err := cli.Users().Current(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = user
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithPrivateToken and
// NewWithAccessToken that wrap New with the appropriate configuration.
package rabbitclient
