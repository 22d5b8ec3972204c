package kafkalib

import (
	"fmt"

	"github.com/segmentio/kafka-go"
)

var ErrEmptyBatch = fmt.Errorf("batch is empty")

type Batch struct {
	msgs        []kafka.Message
	chunkSize   uint
	iteratorIdx uint
}

func NewBatch(messages []kafka.Message, chunkSize uint) *Batch {
	return &Batch{
		msgs:      messages,
		chunkSize: chunkSize,
	}
}

func (b *Batch) IsValid() error {
	if len(b.msgs) == 0 {
		return ErrEmptyBatch
	}

	if b.chunkSize < 1 {
		return fmt.Errorf("chunk size is too small")
	}

	return nil
}

func (b *Batch) HasNext() bool {
	return uint(len(b.msgs)) > b.iteratorIdx
}

func (b *Batch) NextChunk() []kafka.Message {
	start := b.iteratorIdx
	b.iteratorIdx += b.chunkSize
	end := b.iteratorIdx

	if end > uint(len(b.msgs)) {
		end = uint(len(b.msgs))
	}

	if start > end {
		return nil
	}

	return b.msgs[start:end]
}
