package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	accountusecase "agendamail-backend/internal/account/usecase"
	agendausecase "agendamail-backend/internal/agenda/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// GmailNotification is the payload Gmail publishes on the watch topic
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service consumes Gmail push notifications from Pub/Sub and triggers an
// agenda re-sync for the mailbox that changed.
type Service struct {
	pubsubClient   *pubsub.Client
	accountUsecase accountusecase.AccountUsecase
	agendaUsecase  agendausecase.AgendaUsecase
	projectID      string
	topicName      string
	subName        string

	// Deduplication: track last historyId per account to skip redelivered
	// notifications
	mu            sync.Mutex
	lastHistoryID map[string]uint64
}

func NewService(projectID, topicName, credentialsFile string, accountUsecase accountusecase.AccountUsecase, agendaUsecase agendausecase.AgendaUsecase) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:   client,
		accountUsecase: accountUsecase,
		agendaUsecase:  agendaUsecase,
		projectID:      projectID,
		topicName:      topicName,
		subName:        topicName + "-sub", // Convention: topic-sub
		lastHistoryID:  make(map[string]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	// Ensure subscription exists
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification GmailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	log.Printf("[PubSub] Notification for %s (historyId: %d)", notification.EmailAddress, notification.HistoryID)

	account, err := s.accountUsecase.AccountByAddress(notification.EmailAddress)
	if err != nil {
		log.Printf("[PubSub] Error finding account for %s: %v", notification.EmailAddress, err)
		return
	}
	if account == nil {
		log.Printf("[PubSub] No linked account for %s", notification.EmailAddress)
		return
	}

	if s.isDuplicate(account.ID, notification.HistoryID) {
		log.Printf("[PubSub] Skipping duplicate notification for account %s (historyId %d)", account.ID, notification.HistoryID)
		return
	}

	count, err := s.agendaUsecase.SyncAccount(ctx, account.UserID, account.ID)
	if err != nil {
		log.Printf("[PubSub] Agenda sync failed for account %s: %v", account.ID, err)
		return
	}
	log.Printf("[PubSub] Agenda sync reconciled %d records for account %s", count, account.ID)
}

// isDuplicate records the history id and reports whether it was already
// seen. Pub/Sub redelivers on slow acks, so history ids arrive more than
// once.
func (s *Service) isDuplicate(accountID string, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.lastHistoryID[accountID]
	if seen && historyID <= last {
		return true
	}
	s.lastHistoryID[accountID] = historyID
	return false
}

func (s *Service) Close() error {
	return s.pubsubClient.Close()
}
