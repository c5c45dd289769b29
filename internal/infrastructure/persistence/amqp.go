package persistence

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewAMQPConnection dials the RabbitMQ broker at url
func NewAMQPConnection(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}
