package services

import (
	"context"
	"log"
	"sync"
	"time"

	"innerAtlasAPI/internal/types/goal"
)

// ReminderService runs a background loop that nudges users to write down
// last night's dream. One push per user per UTC day, only at or after the
// configured hour. A nil push provider disables delivery entirely.
type ReminderService struct {
	users    *UserService
	push     PushNotificationProvider
	interval time.Duration
	hourUTC  int
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewReminderService(users *UserService, hourUTC int) *ReminderService {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 18
	}
	return &ReminderService{
		users:    users,
		interval: time.Hour,
		hourUTC:  hourUTC,
		stopChan: make(chan struct{}),
	}
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *ReminderService) SetPushProvider(provider PushNotificationProvider) {
	s.push = provider
}

func (s *ReminderService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				return
			}
		}
	}()
	log.Printf("ReminderService: started, nudging at %02d:00 UTC", s.hourUTC)
}

func (s *ReminderService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *ReminderService) runOnce() {
	if s.push == nil {
		return
	}
	if time.Now().UTC().Hour() < s.hourUTC {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	today := goal.Today()
	targets, err := s.users.UsersNeedingReminder(ctx, today)
	if err != nil {
		log.Printf("ReminderService: failed to load targets: %v", err)
		return
	}

	sent := 0
	for _, t := range targets {
		err := s.push.SendPush(ctx, t.FCMToken,
			"How did you sleep?",
			"Take a minute to capture last night's dream while it's still fresh.",
			map[string]string{"type": "journal_reminder"},
		)
		if err != nil {
			log.Printf("ReminderService: push to %s failed: %v", t.ClerkID, err)
			continue
		}
		if err := s.users.MarkReminded(ctx, t.ClerkID, today); err != nil {
			log.Printf("ReminderService: %v", err)
		}
		sent++
	}

	if len(targets) > 0 {
		log.Printf("ReminderService: sent %d of %d reminders", sent, len(targets))
	}
}
