package persistedlist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// PersistedList is an append-only list of JSON documents, one per line. A push
// is durable once it returns; the full list is only materialized on demand.
type PersistedList[T any] struct {
	filePath string
}

func NewPersistedList[T any](filePath string) *PersistedList[T] {
	return &PersistedList[T]{
		filePath: filePath,
	}
}

func (p PersistedList[T]) Push(item T) error {
	// If the file doesn't exist, create it
	file, err := os.OpenFile(p.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	bytes, err := json.Marshal(item)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	bytes = append(bytes, '\n')
	if _, err = file.Write(bytes); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}

	return file.Close()
}

// GetData - This is a separate function since we don't need to keep the entire list in memory
func (p PersistedList[T]) GetData() ([]T, error) {
	file, err := os.Open(p.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	defer file.Close()

	// Read each line, unmarshal it, and append it to the data slice
	var data []T
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var t T
		if err = json.Unmarshal(scanner.Bytes(), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line: %w", err)
		}

		data = append(data, t)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}

	return data, nil
}
