// Package infra contains the adapters behind the core interfaces: the
// pigpio and dummy hardware drivers, the Paho MQTT client, the iw station
// counter, metrics sinks and Sentry monitoring.
package infra
