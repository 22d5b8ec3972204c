package streaming

import "fmt"

// TopicSelector derives topic names from the logical server name and the
// source table. Row changes go to "server.db.table"; schema changes go to a
// topic named after the server alone.
type TopicSelector struct{}

func (TopicSelector) Topic(serverName, databaseName, tableName string) string {
	return fmt.Sprintf("%s.%s.%s", serverName, databaseName, tableName)
}

func (TopicSelector) SchemaChangeTopic(serverName string) string {
	return serverName
}
