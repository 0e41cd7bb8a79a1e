/*
Package facade implements the Request Facade: the public surface the
query layer and any external invoker drive the cache through.

Every operation is a plain Go method on *Facade taking and returning
concrete request/response records (messages.go); server.go's dispatch
adapts those methods to an "opaque bytes in, opaque bytes out" wire
contract, so it only needs one hand-written gRPC method instead of one
per operation. See DESIGN.md for why that collapse is a transport-layer
simplification. The dispatch covers the listing, describe,
catalog-update, metadata-op, DDL, update_metastore and reset_catalog
operations; ResetTable, CreateExecRequest, Explain, GetHadoopConfig
and GetHadoopConfigValue have no dispatch entry and are callable only
in-process.

Name resolution and listings consult the installed authz.Checker
before touching the Object Store; DDL methods drive the MetaStore
pool first and, on success, synthesize a direct CatalogObject update
fed to the Reconciler so the cache reflects this node's own writes
without waiting for the next broadcast.
*/
package facade
