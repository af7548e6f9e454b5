// Package framework contains the core Dugway test-orchestration engine.
//
// The general model is:
//
// 1. A test suite is a declarative document describing services (long-lived external
// connections such as an MQTT broker or an HTTP server) and test cases, where each
// case is an ordered list of steps.
//
// 2. Every service and step is a configurable object: its configuration is validated
// at construction time against a JSON Schema assembled from the schemas of the
// capabilities attached to the object. Capabilities are named facets - a content
// queue, a reference to another step, a schema filter - that replace subclassing with
// composition. Consumers dispatch on which capabilities an object exposes, not on its
// concrete type.
//
// 3. Step execution is strictly sequential, but a step may register a callback with a
// service that keeps producing content on a background goroutine for the remainder of
// the case. A later step can reference the producing step by id and consume the
// captured content with ordering and timeout guarantees.
//
// The domain-specific code that knows how to talk to a particular kind of service
// (MQTT, HTTP) registers its service and step constructors with this package's
// registry and is otherwise built out of the capability primitives defined here.
package framework
