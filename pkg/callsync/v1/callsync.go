// Package callsyncv1 defines the record sync service shared by the
// device daemon and the sync server.
//
// The service is declared by hand against grpc.ServiceDesc with a JSON
// codec instead of generated protobuf code; both ends of the wire live in
// this repository, so the schema is the Go types below.
package callsyncv1

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "callsync.v1.CallSync"

// CodecName selects the JSON codec on calls to this service.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// RecordPayload is one uploaded work call record.
type RecordPayload struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Number          string    `json:"number"`
	Direction       string    `json:"direction"`
	DurationSeconds int64     `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
	SimSlot         string    `json:"sim_slot"`
	Note            string    `json:"note,omitempty"`
}

// PushRequest uploads a batch of work call records.
type PushRequest struct {
	DeviceID string          `json:"device_id"`
	Records  []RecordPayload `json:"records"`
}

// AnonymizedCall carries the shape of a personal call with no identity:
// duration, timestamp, direction, and SIM slot only.
type AnonymizedCall struct {
	DurationSeconds int64     `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
	Direction       string    `json:"direction"`
	SimSlot         string    `json:"sim_slot"`
}

// AnonymizedBatch uploads anonymized personal call shapes.
type AnonymizedBatch struct {
	DeviceID string           `json:"device_id"`
	Calls    []AnonymizedCall `json:"calls"`
}

// PushResponse acknowledges an upload.
type PushResponse struct {
	Accepted int `json:"accepted"`
}

// CallSyncClient is the client API for the CallSync service.
type CallSyncClient interface {
	PushRecords(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error)
	PushAnonymized(ctx context.Context, in *AnonymizedBatch, opts ...grpc.CallOption) (*PushResponse, error)
}

type callSyncClient struct {
	cc grpc.ClientConnInterface
}

// NewCallSyncClient creates a client over an established connection.
func NewCallSyncClient(cc grpc.ClientConnInterface) CallSyncClient {
	return &callSyncClient{cc: cc}
}

func (c *callSyncClient) PushRecords(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error) {
	out := new(PushResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/PushRecords", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *callSyncClient) PushAnonymized(ctx context.Context, in *AnonymizedBatch, opts ...grpc.CallOption) (*PushResponse, error) {
	out := new(PushResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/PushAnonymized", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CallSyncServer is the server API for the CallSync service.
type CallSyncServer interface {
	PushRecords(ctx context.Context, in *PushRequest) (*PushResponse, error)
	PushAnonymized(ctx context.Context, in *AnonymizedBatch) (*PushResponse, error)
}

// RegisterCallSyncServer registers the service implementation.
func RegisterCallSyncServer(s grpc.ServiceRegistrar, srv CallSyncServer) {
	s.RegisterService(&CallSync_ServiceDesc, srv)
}

func _CallSync_PushRecords_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PushRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CallSyncServer).PushRecords(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/PushRecords",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CallSyncServer).PushRecords(ctx, req.(*PushRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CallSync_PushAnonymized_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AnonymizedBatch)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CallSyncServer).PushAnonymized(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/PushAnonymized",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CallSyncServer).PushAnonymized(ctx, req.(*AnonymizedBatch))
	}
	return interceptor(ctx, in, info, handler)
}

// CallSync_ServiceDesc is the grpc.ServiceDesc for the CallSync service.
var CallSync_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CallSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushRecords",
			Handler:    _CallSync_PushRecords_Handler,
		},
		{
			MethodName: "PushAnonymized",
			Handler:    _CallSync_PushAnonymized_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "callsync/v1",
}
