// Package graph is the persistent property-graph client (§2 component
// 1, §6.3): connection management with pooling and retry, the §6.3
// uniqueness constraints, and the low-level Cypher building blocks the
// ingester and post-hoc analytics passes compose into transactions. The
// driver wrapper is grounded on the teacher's
// internal/knowledge/neo4j_client.go (NewDriverWithContext, session-scoped
// ExecuteWrite/ExecuteRead, connectivity verification on construction),
// generalized here with the §4.6 "Connection retry" driver-recreation
// policy the teacher's client didn't need for its own single-shot MCP
// tool calls.
package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"smj-graphpipeline/internal/config"
)

// Client manages the Neo4j driver connection, including the §4.6
// "Connection retry" policy: on a routing/connection/defunct error the
// driver is recreated and the failing transaction is retried up to 3
// times with a 5s delay.
type Client struct {
	mu     sync.RWMutex
	driver neo4j.DriverWithContext
	cfg    config.GraphConfig
}

// Connect dials the graph store and verifies connectivity (§6.3 "bolt-style
// URI with username/password").
func Connect(ctx context.Context, cfg config.GraphConfig) (*Client, error) {
	c := &Client{cfg: cfg}
	if err := c.redial(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// redial (re)creates the underlying driver with the configured pool size
// and acquisition/connect timeouts (§5 "Graph driver: 30-s connect, 60-s
// acquire", §6.3).
func (c *Client) redial(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(
		c.cfg.URI,
		neo4j.BasicAuth(c.cfg.Username, c.cfg.Password, ""),
		func(cc *neo4jconfig.Config) {
			cc.MaxConnectionPoolSize = c.cfg.PoolSize
			cc.ConnectionAcquisitionTimeout = c.cfg.AcquireTimeout
			cc.SocketConnectTimeout = c.cfg.ConnectTimeout
		},
	)
	if err != nil {
		return fmt.Errorf("graph: failed to create driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return fmt.Errorf("graph: failed to verify connectivity: %w", err)
	}

	c.mu.Lock()
	old := c.driver
	c.driver = driver
	c.mu.Unlock()

	if old != nil {
		_ = old.Close(ctx)
	}
	return nil
}

func (c *Client) currentDriver() neo4j.DriverWithContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.driver
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.currentDriver().Close(ctx)
}

// maxConnectionRetries and connectionRetryDelay implement §4.6's "retried
// up to 3 times with a 5-s delay" connection-error policy: one initial
// attempt plus up to maxConnectionRetries retries.
const (
	maxConnectionRetries = 3
	connectionRetryDelay = 5 * time.Second
)

// isConnectionError reports whether err looks like the routing/connection/
// defunct class of failure §4.6 calls out for driver recreation, rather
// than a data-level error (constraint violation, bad Cypher) that retrying
// the connection cannot fix.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range []string{"routing", "connection", "defunct", "broken pipe", "eof"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ExecuteWrite runs work in a write transaction against the configured
// database, retrying on connection-class errors per §4.6.
func (c *Client) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return c.executeWithRetry(ctx, neo4j.AccessModeWrite, work)
}

// ExecuteRead runs work in a read transaction, with the same connection
// retry policy as ExecuteWrite.
func (c *Client) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return c.executeWithRetry(ctx, neo4j.AccessModeRead, work)
}

func (c *Client) executeWithRetry(ctx context.Context, mode neo4j.AccessMode, work neo4j.ManagedTransactionWork) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= maxConnectionRetries+1; attempt++ {
		session := c.currentDriver().NewSession(ctx, neo4j.SessionConfig{
			DatabaseName: c.cfg.Database,
			AccessMode:   mode,
		})
		var result any
		var err error
		if mode == neo4j.AccessModeWrite {
			result, err = session.ExecuteWrite(ctx, work)
		} else {
			result, err = session.ExecuteRead(ctx, work)
		}
		_ = session.Close(ctx)

		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isConnectionError(err) || attempt == maxConnectionRetries+1 {
			return nil, err
		}

		if redialErr := c.redial(ctx); redialErr != nil {
			return nil, fmt.Errorf("graph: redial after connection error failed: %w (original: %v)", redialErr, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectionRetryDelay):
		}
	}
	return nil, lastErr
}
