// Package codeboard is a small runtime for hobby 2D games built from layers,
// entities and pausable timers.
//
// # Quick start
//
//	e := codeboard.NewEngine(codeboard.EngineOptions{Clock: clock, Renderer: r})
//	rocks := e.RegisterEntity("Rock", []codeboard.EntityOption{
//		codeboard.WithSize(30),
//		codeboard.WithShape(codeboard.ShapeCircle),
//		codeboard.WithVelocity(math.Pi/2, 80),
//	}, nil)
//	e.ScheduleTask(func() { rocks.Spawn("", codeboard.WithPosition(400, 0)) },
//		codeboard.TaskOptions{Time: time.Second, Loop: true})
//	e.Start()
//
// # Layers and the scene stack
//
// A [SceneStack] holds an always-resident global layer and a stack of pushed
// layers. Every frame the global layer and the top of the stack are updated
// and then drawn; every other layer stays paused. Pushing a layer pauses the
// one below it and popping resumes it.
//
// Each [Layer] owns a UI tree of [Element] values, a [SpatialRegistry] of
// entities, an [AsyncManager] of tasks, lerps and sounds, and any number of
// [ParticleEmitter] values. With a TickRate the layer runs fixed steps from
// an accumulator; otherwise it forwards the frame delta once.
//
// # Tasks
//
// A [Task] is a delayed callback that counts only the active time of its
// layer. Pausing a layer freezes every task on it and resuming re-arms them
// with whatever time remained, so a looping one-second task paused half way
// fires half a second after the resume.
//
// # Entities
//
// An [Entity] is constructed, spawned into exactly one layer and finally
// despawned. Despawn is idempotent. Registries iterate snapshots, so hooks
// may spawn and despawn freely; entities spawned mid-pass are first visited
// by the next pass. Entity kinds are registered with [Engine.RegisterEntity]
// or loaded from YAML with [Engine.RegisterEntitySpecs].
//
// # Hosts
//
// The core never touches a window or a clock directly. A host supplies a
// [FrameClock], a [Renderer] and input events: see packages ebitenhost and
// termhost, or drive a stack with [ManualClock] and [NopRenderer] for tests
// and headless replays.
package codeboard
