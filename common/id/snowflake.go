package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the process-wide snowflake node. Each running bot replica needs
// its own node ID so that idempotency keys never collide across replicas.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered unique ID.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns New formatted in base 10, for use in headers.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
