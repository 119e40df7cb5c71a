// Package metadata keeps record fields and the metadata embedded in record
// binaries (EXIF, IPTC, XMP and similar) in sync.
//
// # Architecture
//
// 1. Registries: MappingRegistry, RuleRegistry and ProcessorRegistry are plain
// lookup tables built once at startup (see core/descriptor) and injected into
// the components below. Lookups return (value, ok); callers decide whether a
// miss is a warning or an error.
//
// 2. RuleResolver: evaluates each enabled rule's filters in order against a
// record, then splits the activated mapping ids into a synchronous and an
// asynchronous set. Async mappings are handed to the EventContext as data.
//
// 3. Engine: for each mapping compares blob dirtiness and field dirtiness
// (from an explicit Changes value) and decides which way metadata flows:
//
//	blob dirty | fields dirty | action
//	-----------+--------------+---------------------------------
//	yes        | yes          | record fields written into blob
//	yes        | no           | blob metadata written into fields
//	no         | yes          | record fields written into blob
//	no         | no           | nothing
//
// 4. Invoker: looks processors up by id (empty means default), wraps their
// failures in InvocationError and optionally memoizes reads in an
// ExtractCache keyed by blob digest.
//
// # Usage
//
//	resolver := metadata.NewRuleResolver(rules, mappings, filters, logger)
//	invoker := metadata.NewInvoker(processors, metadata.NewExtractCache(time.Minute))
//	engine := metadata.NewEngine(mappings, resolver, invoker, logger, metadata.Options{})
//
//	changes := metadata.NewChanges().MarkBlob("file:content")
//	event := metadata.NewEvent(session)
//	err := engine.HandleSyncUpdate(ctx, record, changes, event)
package metadata
