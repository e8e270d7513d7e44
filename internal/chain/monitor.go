package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/lumina/lts/internal/logger"
)

// EventsTopic is the watermill topic carrying decoded DomainEvents.
// Consumers subscribe explicitly; there is no implicit listener
// registration.
const EventsTopic = "lumina.chain.events"

// Monitor polls the contract for new logs and publishes decoded domain
// events to the message bus. Scans trail the head by the configured
// confirmation depth so a shallow reorg cannot retract a published event.
type Monitor struct {
	client        *Client
	publisher     message.Publisher
	interval      time.Duration
	confirmations uint64
	lastBlock     uint64

	ctx    context.Context
	cancel context.CancelFunc
}

func NewMonitor(client *Client, publisher message.Publisher, startBlock, confirmations uint64, interval time.Duration) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		client:        client,
		publisher:     publisher,
		interval:      interval,
		confirmations: confirmations,
		lastBlock:     startBlock,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (m *Monitor) Start() {
	logger.Info("Starting chain monitor from block %d", m.lastBlock)
	go m.loop()
}

func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Chain monitor stopped")
			return
		case <-ticker.C:
			if err := m.processNewBlocks(); err != nil {
				logger.Error("Error processing blocks: %v", err)
			}
		}
	}
}

func (m *Monitor) processNewBlocks() error {
	current, err := m.client.LatestBlock(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to get current block number: %w", err)
	}
	target, ok := m.confirmedTarget(current)
	if !ok {
		return nil
	}

	logs, err := m.client.FilterContractLogs(m.ctx, m.lastBlock+1, target)
	if err != nil {
		return fmt.Errorf("failed to filter logs: %w", err)
	}

	for _, log := range logs {
		event, err := m.client.DecodeLog(log)
		if err != nil {
			if !errors.Is(err, ErrUnknownEvent) {
				logger.Warn("Failed to decode log in tx %s: %v", log.TxHash.Hex(), err)
			}
			continue
		}

		payload, err := event.Marshal()
		if err != nil {
			logger.Error("Failed to marshal event %s: %v", event.Type, err)
			continue
		}
		msg := message.NewMessage(uuid.NewString(), payload)
		if err := m.publisher.Publish(EventsTopic, msg); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
		}
		logger.Debug("Published %s event from block %d", event.Type, event.BlockNumber)
	}

	m.lastBlock = target
	return nil
}

// confirmedTarget returns the highest block deep enough to scan, or false
// when the confirmed head has not advanced past the last scanned block.
func (m *Monitor) confirmedTarget(head uint64) (uint64, bool) {
	if head <= m.confirmations {
		return 0, false
	}
	target := head - m.confirmations
	if target <= m.lastBlock {
		return 0, false
	}
	return target, true
}
