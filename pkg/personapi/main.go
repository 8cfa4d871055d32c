package personapi

import (
	"context"
)

// Version is the build version, set with
// -ldflags "-X github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/personapi.Version=...".
var Version = "dev"

// Main runs the personapi command line with args (without the program
// name). Cancelling ctx stops a running server gracefully. It can be called
// from tests without building the binary.
//
// # Command Line Usage
//
//	# serve on :3000 against SurrealDB
//	SURREALDB_URL=ws://localhost:8000/rpc personapi serve
//
//	# serve against PostgreSQL
//	personapi serve --driver postgres --store-uri "host=localhost user=postgres dbname=people"
//
//	# serve from a local SQLite file, writes disabled
//	personapi serve --driver sqlite --store-uri people.db --read-only
//
//	# check the store connection
//	personapi ping
//
// # Environment Variables
//
//	PERSONAPI_LISTEN_ADDR  - listen address (default :3000)
//	PERSONAPI_STORE_DRIVER - surrealdb (default), postgres, sqlite or memory
//	PERSONAPI_STORE_URI    - store connection string
//	SURREALDB_URL          - store URI for the surrealdb driver when PERSONAPI_STORE_URI is unset
//	POSTGRES_DSN           - store URI for the postgres driver when PERSONAPI_STORE_URI is unset
//	SURREALDB_NS           - SurrealDB namespace (default personapi)
//	SURREALDB_DB           - SurrealDB database (default personapi)
//	SURREALDB_USER         - SurrealDB username
//	SURREALDB_PASS         - SurrealDB password
//	PERSONAPI_READ_ONLY    - reject writes when true
//	PERSONAPI_LOG_LEVEL    - debug, info, warn or error
//	PERSONAPI_LOG_FORMAT   - json or console
func Main(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
