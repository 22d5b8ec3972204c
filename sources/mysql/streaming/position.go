package streaming

import (
	"fmt"
	"strconv"

	"github.com/go-mysql-org/go-mysql/mysql"
)

const (
	ServerPartitionKey      = "server"
	BinlogFilenameOffsetKey = "file"
	BinlogPositionOffsetKey = "pos"
	BinlogRowOffsetKey      = "row"
)

// The byte offset of the first event in a binlog file, past the magic header.
const firstEventPosition = 4

// SourceInfo tracks how far into the server's binary log the engine has read.
// The partition identifies the logical server; the offset is the (file,
// byte position, row within event) triple sufficient to resume reading.
// Not safe for concurrent use; the event processor is its only writer.
type SourceInfo struct {
	serverName     string
	binlogFilename string
	binlogPosition int64
	eventRowNumber int

	partition map[string]string
}

func NewSourceInfo(serverName string) *SourceInfo {
	return &SourceInfo{
		serverName:     serverName,
		binlogPosition: firstEventPosition,
		partition:      map[string]string{ServerPartitionKey: serverName},
	}
}

func (s *SourceInfo) ServerName() string {
	return s.serverName
}

// Partition identifies the database server whose log is being consumed.
func (s *SourceInfo) Partition() map[string]string {
	return s.partition
}

// Offset returns a copy of the current offset map.
func (s *SourceInfo) Offset() map[string]any {
	return map[string]any{
		BinlogFilenameOffsetKey: s.binlogFilename,
		BinlogPositionOffsetKey: s.binlogPosition,
		BinlogRowOffsetKey:      s.eventRowNumber,
	}
}

// OffsetRow records the 0-based row number within the current event and
// returns the resulting offset map.
func (s *SourceInfo) OffsetRow(rowNumber int) map[string]any {
	s.SetRowInEvent(rowNumber)
	return s.Offset()
}

func (s *SourceInfo) SetBinlogFilename(filename string) {
	s.binlogFilename = filename
}

func (s *SourceInfo) SetBinlogPosition(position int64) {
	s.binlogPosition = position
}

func (s *SourceInfo) SetRowInEvent(rowNumber int) {
	s.eventRowNumber = rowNumber
}

// SetOffset restores a previously persisted offset. A missing file entry is
// fatal; pos and row tolerate both integer and decimal-string encodings, and a
// missing row defaults to 0.
func (s *SourceInfo) SetOffset(offset map[string]any) error {
	if offset == nil {
		return nil
	}

	filename, isOk := offset[BinlogFilenameOffsetKey].(string)
	if !isOk || filename == "" {
		return fmt.Errorf("offset %q parameter is missing", BinlogFilenameOffsetKey)
	}

	position, err := longOffsetValue(offset, BinlogPositionOffsetKey)
	if err != nil {
		return err
	}

	row, err := longOffsetValue(offset, BinlogRowOffsetKey)
	if err != nil {
		return err
	}

	s.binlogFilename = filename
	s.binlogPosition = position
	s.eventRowNumber = int(row)
	return nil
}

func (s *SourceInfo) BinlogFilename() string {
	return s.binlogFilename
}

func (s *SourceInfo) BinlogPosition() int64 {
	return s.binlogPosition
}

func (s *SourceInfo) EventRowNumber() int {
	return s.eventRowNumber
}

// ToMySQLPosition is the binlog client's view of the current offset.
func (s *SourceInfo) ToMySQLPosition() mysql.Position {
	return mysql.Position{Name: s.binlogFilename, Pos: uint32(s.binlogPosition)}
}

func longOffsetValue(offset map[string]any, key string) (int64, error) {
	value, isOk := offset[key]
	if !isOk || value == nil {
		return 0, nil
	}

	switch castValue := value.(type) {
	case int:
		return int64(castValue), nil
	case int32:
		return int64(castValue), nil
	case int64:
		return castValue, nil
	case uint32:
		return int64(castValue), nil
	case uint64:
		return int64(castValue), nil
	case float64:
		return int64(castValue), nil
	case string:
		parsed, err := strconv.ParseInt(castValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("offset %q parameter value %q could not be converted to an integer: %w", key, castValue, err)
		}
		return parsed, nil
	}

	return 0, fmt.Errorf("offset %q parameter value %v has unsupported type %T", key, value, value)
}
