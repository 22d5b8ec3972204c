package config

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/go-sql-driver/mysql"

	"github.com/christian-posta/debezium/lib/relational"
)

const defaultStreamingBatchSize = 1000

type MySQLStreamingSettings struct {
	// ServerName is the logical name of this database server; it prefixes
	// every topic and identifies the source partition.
	ServerName string `yaml:"serverName"`
	// ServerID - Unique ID in the cluster.
	ServerID          uint32 `yaml:"serverID"`
	OffsetFile        string `yaml:"offsetFile"`
	SchemaHistoryFile string `yaml:"schemaHistoryFile"`
	BatchSize         int32  `yaml:"batchSize,omitempty"`

	// IncludeTables and ExcludeTables filter the emitted stream by qualified
	// table name ("db.table"). At most one may be set.
	IncludeTables []string `yaml:"includeTables,omitempty"`
	ExcludeTables []string `yaml:"excludeTables,omitempty"`

	IncludeViews      bool `yaml:"includeViews,omitempty"`
	EmitSchemaChanges bool `yaml:"emitSchemaChanges,omitempty"`
	// EmitBeforeImage additionally emits the before-image of updated rows,
	// ahead of the after-image.
	EmitBeforeImage bool `yaml:"emitBeforeImage,omitempty"`
}

func (m MySQLStreamingSettings) GetBatchSize() int32 {
	return cmp.Or(m.BatchSize, defaultStreamingBatchSize)
}

// BuildTableFilter returns the user-supplied table predicate, or nil when no
// filtering was configured.
func (m MySQLStreamingSettings) BuildTableFilter() func(relational.TableID) bool {
	if len(m.IncludeTables) > 0 {
		included := slices.Clone(m.IncludeTables)
		return func(id relational.TableID) bool {
			return slices.Contains(included, id.String())
		}
	}

	if len(m.ExcludeTables) > 0 {
		excluded := slices.Clone(m.ExcludeTables)
		return func(id relational.TableID) bool {
			return !slices.Contains(excluded, id.String())
		}
	}

	return nil
}

type MySQL struct {
	Host              string                 `yaml:"host"`
	Port              int                    `yaml:"port"`
	Username          string                 `yaml:"username"`
	Password          string                 `yaml:"password"`
	Database          string                 `yaml:"database"`
	StreamingSettings MySQLStreamingSettings `yaml:"streamingSettings"`
}

func (m *MySQL) ToDSN() string {
	config := mysql.NewConfig()
	config.User = m.Username
	config.Passwd = m.Password
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", m.Host, m.Port)
	config.DBName = m.Database
	return config.FormatDSN()
}

func (m *MySQL) Validate() error {
	if m == nil {
		return fmt.Errorf("MySQL config is nil")
	}

	if m.Host == "" || m.Username == "" || m.Password == "" {
		return fmt.Errorf("one of the MySQL settings is empty: host, username, password")
	}

	if m.Port <= 0 {
		return fmt.Errorf("port is not set or <= 0")
	} else if m.Port > math.MaxUint16 {
		return fmt.Errorf("port is > %d", math.MaxUint16)
	}

	if m.StreamingSettings.ServerName == "" {
		return fmt.Errorf("streaming serverName must be passed in")
	}

	if m.StreamingSettings.OffsetFile == "" {
		return fmt.Errorf("streaming offsetFile must be passed in")
	}

	if m.StreamingSettings.SchemaHistoryFile == "" {
		return fmt.Errorf("streaming schemaHistoryFile must be passed in")
	}

	if len(m.StreamingSettings.IncludeTables) > 0 && len(m.StreamingSettings.ExcludeTables) > 0 {
		return fmt.Errorf("cannot include and exclude tables at the same time")
	}

	return nil
}
