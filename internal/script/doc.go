// Package script hosts Lua scripts that take part in the event bus.
//
// Scripts see a global "events" table:
//
//	handle, live = events.subscribe("Player.Jump", function(p)
//	    print(p["game.JumpHeight"])
//	end)
//	events.unsubscribe(handle)
//	ok, err = events.create("Quest.Complete")
//	ok, err = events.fire("Quest.Complete", { string = "intro" })
//	events.state("Quest.Complete") -- "unregistered", "pending" or "real"
//
// Payloads cross the boundary as tables keyed by Go type name. Go values
// handed to a Lua subscriber are converted field by field; values fired from
// Lua are decoded into the Go types registered with RegisterType. A Lua
// error inside a subscriber is reported like any other callback error and
// does not stop the remaining subscribers.
//
// The Lua state has no io, os or package libraries and cannot load code.
package script
