//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/application"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	rentalEvents "github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
	"github.com/hadfi53/rakb-sub004/internal/mailer"
	"github.com/hadfi53/rakb-sub004/internal/notify"
	"github.com/hadfi53/rakb-sub004/internal/repository"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Bookings        *application.BookingService
	Notifications   *application.NotificationService
	BookingConsumer *rentalEvents.BookingConsumer
	CleanupProducer func()
}

// passLocker satisfies the booking lock without Redis; overlap protection in
// these tests comes from the database overlap check alone.
type passLocker struct{}

func (passLocker) Acquire(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	return true, nil
}

func (passLocker) Release(ctx context.Context, vehicleID uuid.UUID) {}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_rental",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_rental sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.InspectionRecordModel{},
		&repository.VehicleModel{},
		&repository.NotificationModel{},
		&repository.ProfileModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, "booking.events", "payment.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRentalStack wires up the booking and notification services.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)

	pricing := bookingDomain.NewStandardPricingStrategy()
	producer := kafka.NewProducer(brokers, logger)

	bookingSvc := application.NewBookingService(bookingRepo, vehicleRepo, pricing, passLocker{}, producer, logger)

	hub := notify.NewHub(logger)
	emailer := mailer.NewHTTPMailer("", "", logger)
	notificationSvc := application.NewNotificationService(notificationRepo, profileRepo, hub, emailer, logger)

	groupID := fmt.Sprintf("test-rental-%s", uuid.New().String()[:8])
	consumer := rentalEvents.NewBookingConsumer(brokers, groupID, notificationSvc, logger)

	return &rentalStack{
		Bookings:        bookingSvc,
		Notifications:   notificationSvc,
		BookingConsumer: consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedProfile inserts a user profile row.
func seedProfile(t *testing.T, db *gorm.DB, id uuid.UUID, email string) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.ProfileModel{
		ID:        id,
		Email:     email,
		FullName:  "Test User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed profile")
}

// seedVehicle inserts an active vehicle listing.
func seedVehicle(t *testing.T, db *gorm.DB, vehicleID, ownerID uuid.UUID, dailyRateCents int64) {
	t.Helper()
	now := time.Now().UTC()
	photos, _ := json.Marshal([]string{})
	model := repository.VehicleModel{
		ID:             vehicleID,
		OwnerID:        ownerID,
		Make:           "Dacia",
		Model:          "Duster",
		Year:           2022,
		PlateNumber:    fmt.Sprintf("TST-%s", uuid.New().String()[:6]),
		DailyRateCents: dailyRateCents,
		Currency:       "mad",
		Location:       "Casablanca",
		PhotoURLs:      photos,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed vehicle")
}

// seedPendingBooking inserts a booking awaiting the owner's decision.
func seedPendingBooking(t *testing.T, db *gorm.DB, bookingID, renterID, ownerID, vehicleID uuid.UUID, startAt, endAt time.Time) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.BookingModel{
		ID:             bookingID,
		BookingNumber:  fmt.Sprintf("RK-INT%s", uuid.New().String()[:4]),
		RenterID:       renterID,
		OwnerID:        ownerID,
		VehicleID:      vehicleID,
		Status:         "pending",
		CheckStatus:    "not_started",
		StartAt:        startAt,
		EndAt:          endAt,
		DailyRateCents: 40000,
		TotalCents:     120000,
		DepositCents:   120000,
		Currency:       "mad",
		PickupLocation: "Airport CMN",
		ReturnLocation: "Airport CMN",
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		var ce kafka.CloudEvent
		if err := json.Unmarshal(msg.Value, &ce); err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
