// Package mqtt provides the shared broadcast bus client for Home Electronics Core.
//
// The MQTT broker is the backbone that lets multiple server instances share
// room broadcasts: a device state change accepted by one instance is
// published to the room's state topic and fanned out by every instance to
// its own websocket clients.
//
// # Topic Structure
//
//	homecore/rooms/{room_id}/state   - full device snapshots after a change
//	homecore/system/status           - server online/offline status (retained)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	err = client.Subscribe(topics.AllRoomStates(), 1, func(topic string, payload []byte) error {
//	    roomID, err := mqtt.RoomIDFromStateTopic(topic)
//	    ...
//	})
//
// Connections auto-reconnect with exponential backoff and re-subscribe to
// all tracked topics. A Last Will and Testament marks the instance offline
// if it crashes.
package mqtt
