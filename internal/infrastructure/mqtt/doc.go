// Package mqtt provides MQTT connectivity and the record change feed.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Last Will and Testament (LWT) for offline detection
//   - Message publishing with QoS guarantees
//   - Subscriptions with wildcard support, restored on reconnect
//   - ChangeFeed, a record.Observer publishing every successful write
//
// # Topics
//
//	<prefix>/record/<table>/<op>   change events (insert, update), not retained
//	<prefix>/system/status         online/offline status, retained
//
// # Security Considerations
//
//   - Enable TLS outside development (cfg.Broker.TLS=true)
//   - Change events carry table, operation and primary key only, never
//     column values
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	feed := mqtt.NewChangeFeed(client, client.Topics(), client.QoS())
//	users := record.NewRepository(handle, account.Users, record.WithObserver(feed))
package mqtt
