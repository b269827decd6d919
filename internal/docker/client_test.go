package docker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/docker/api/types/events"
)

// TestLocalClient_NilCheck 测试空客户端的错误处理
func TestLocalClient_NilCheck(t *testing.T) {
	var client *LocalClient
	ctx := context.Background()

	if err := client.Ping(ctx); !errors.Is(err, ErrClientNotInitialized) {
		t.Errorf("Expected ErrClientNotInitialized for Ping, got: %v", err)
	}

	if _, err := client.ListImages(ctx); !errors.Is(err, ErrClientNotInitialized) {
		t.Errorf("Expected ErrClientNotInitialized for ListImages, got: %v", err)
	}

	if _, err := client.ListContainers(ctx, []string{"running"}); !errors.Is(err, ErrClientNotInitialized) {
		t.Errorf("Expected ErrClientNotInitialized for ListContainers, got: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Expected nil error for nil client Close, got: %v", err)
	}
}

// TestLocalClient_WatchEventsNil 空客户端监听事件时应立即返回错误并关闭通道
func TestLocalClient_WatchEventsNil(t *testing.T) {
	client := &LocalClient{}
	eventChan, errChan := client.WatchEvents(context.Background())

	select {
	case err := <-errChan:
		if !errors.Is(err, ErrClientNotInitialized) {
			t.Errorf("Expected ErrClientNotInitialized, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected error from WatchEvents")
	}

	if _, ok := <-eventChan; ok {
		t.Error("Expected event channel to be closed")
	}
}

// TestConvertEvent 测试事件过滤和转换
func TestConvertEvent(t *testing.T) {
	msg := events.Message{
		Type:   events.ContainerEventType,
		Action: events.ActionStart,
		Actor: events.Actor{
			ID:         "abc123",
			Attributes: map[string]string{"name": "web1"},
		},
		Time:     1700000000,
		TimeNano: 1700000000123456789,
	}

	ev, ok := convertEvent(msg)
	if !ok {
		t.Fatal("Expected start event to be kept")
	}
	if ev.Type != EventContainer {
		t.Errorf("Expected type container, got %s", ev.Type)
	}
	if ev.Action != "start" {
		t.Errorf("Expected action start, got %s", ev.Action)
	}
	if ev.Name != "web1" {
		t.Errorf("Expected name web1, got %s", ev.Name)
	}
	if ev.Timestamp.UnixNano() != 1700000000123456789 {
		t.Errorf("Expected nanosecond timestamp, got %v", ev.Timestamp)
	}

	// exec_start 不影响资源树
	msg.Action = "exec_start: /bin/sh"
	if _, ok := convertEvent(msg); ok {
		t.Error("Expected exec_start to be filtered")
	}

	msg.Type = events.ImageEventType
	msg.Action = events.ActionPull
	ev, ok = convertEvent(msg)
	if !ok || ev.Type != EventImage {
		t.Errorf("Expected image pull event, got %+v (kept=%v)", ev, ok)
	}

	msg.Type = events.NetworkEventType
	msg.Action = events.ActionCreate
	if _, ok := convertEvent(msg); ok {
		t.Error("Expected network events to be filtered")
	}
}

// 注意：以下是集成测试，需要真实的 Docker 环境
// 使用 go test -short 可以跳过

// TestList_Integration 列出镜像和容器
func TestList_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, err := NewLocalClient("")
	if err != nil {
		t.Skipf("Cannot create Docker client (Docker not available?): %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		t.Skipf("Cannot ping Docker daemon: %v", err)
	}

	images, err := client.ListImages(ctx)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	t.Logf("Found %d images", len(images))

	containers, err := client.ListContainers(ctx, []string{"created", "restarting", "running", "paused", "exited", "dead"})
	if err != nil {
		t.Fatalf("ListContainers failed: %v", err)
	}
	for _, c := range containers {
		if c.ID == "" {
			t.Error("Container ID should not be empty")
		}
		if c.State == "" {
			t.Errorf("Container %s has empty state", c.ID)
		}
	}
	t.Logf("Found %d containers", len(containers))
}
