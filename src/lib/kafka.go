package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const BookingEventsTopic = "booking-events"

var (
	producer     *kafka.Producer
	producerOnce sync.Once
	producerErr  error
)

func KafkaEnabled() bool {
	return os.Getenv("KAFKA_BROKER") != ""
}

func GetKafkaProducer(clientId string) (*kafka.Producer, error) {
	producerOnce.Do(func() {
		p, err := kafka.NewProducer(&kafka.ConfigMap{
			"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
			"client.id":         clientId,
			"acks":              "all",
		})
		if err != nil {
			log.Printf("Error on producer: %s\n", err.Error())
			producerErr = err
			return
		}
		go func() {
			for e := range p.Events() {
				if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
					log.Printf("[kafka] delivery failed: %s\n", m.TopicPartition.Error.Error())
				}
			}
		}()
		producer = p
	})
	return producer, producerErr
}

func KafkaProduceMessage(clientId string, topic string, key string, payload any) error {
	p, err := GetKafkaProducer(clientId)
	if err != nil {
		return err
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding payload: %s\n", err.Error())
		return err
	}
	return p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
}

// KafkaPublisher publishes booking lifecycle events keyed by booking id, so
// events for one booking keep their order within a partition.
type KafkaPublisher struct {
	ClientID string
	Topic    string
}

func (k *KafkaPublisher) Publish(ctx context.Context, key string, payload any) error {
	return KafkaProduceMessage(k.ClientID, k.Topic, key, payload)
}

// KafkaConsume polls topics until ctx is cancelled and hands every message
// value to handler.
func KafkaConsume(ctx context.Context, groupId string, topics []string, handler func([]byte)) error {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	})
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return err
	}
	if err := consumer.SubscribeTopics(topics, nil); err != nil {
		log.Printf("Error subscribing to %v: %s\n", topics, err.Error())
		consumer.Close()
		return err
	}
	go func() {
		defer consumer.Close()
		log.Printf("[kafka] waiting for messages on %v...\n", topics)
		for ctx.Err() == nil {
			switch e := consumer.Poll(100).(type) {
			case *kafka.Message:
				handler(e.Value)
			case kafka.Error:
				log.Printf("[kafka] consumer error: %s\n", e.Error())
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(context.Background(), topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
