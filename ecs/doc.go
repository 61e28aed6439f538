// Package ecs bridges codeboard entity lifecycle events into ECS worlds.
//
// The adapter is [NewDonburiStore], which publishes every spawn, despawn and
// collision as a typed [Donburi] event. Subscribe to [EntityEventType] in your
// systems and drain the queue with ProcessEvents:
//
//	world := donburi.NewWorld()
//	engine := codeboard.NewEngine(codeboard.EngineOptions{
//		Events: ecs.NewDonburiStore(world),
//	})
//	ecs.EntityEventType.Subscribe(world, onEntityEvent)
//	...
//	ecs.EntityEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
