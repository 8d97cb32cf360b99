package catalog

import (
	"context"
	"docs-debug/codec"
	"docs-debug/specification"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const (
	specPrefix     = "/docs-debug/specs/"
	instancePrefix = "/docs-debug/instances/"
)

var (
	_ Catalog  = (*EtcdCatalog)(nil)
	_ Registry = (*EtcdCatalog)(nil)
	_ Catalog  = (*FileCatalog)(nil)
)

// EtcdCatalog keeps the catalog in etcd under two prefixes:
//
//	/docs-debug/specs/{service}             → JSON specification.Service
//	/docs-debug/instances/{service}/{addr}  → JSON ServiceInstance, bound to a TTL lease
//
// Instances vanish when their lease expires, so a crashed server stops
// receiving debug invocations without explicit cleanup.
type EtcdCatalog struct {
	client *clientv3.Client
	codec  codec.Codec
	logger *zap.Logger
}

// NewEtcdCatalog connects to the given etcd endpoints.
func NewEtcdCatalog(endpoints []string, logger *zap.Logger) (*EtcdCatalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
		Logger:      logger.Named("etcd"),
	})
	if err != nil {
		return nil, err
	}
	return &EtcdCatalog{client: c, codec: codec.GetCodec(codec.CodecTypeJSON), logger: logger}, nil
}

func (r *EtcdCatalog) Close() error {
	return r.client.Close()
}

// Publish stores (or replaces) a service's specification.
func (r *EtcdCatalog) Publish(ctx context.Context, service specification.Service) error {
	val, err := r.codec.Encode(service)
	if err != nil {
		return err
	}
	_, err = r.client.Put(ctx, specPrefix+service.Name, string(val))
	return err
}

func (r *EtcdCatalog) Services(ctx context.Context) ([]specification.Service, error) {
	resp, err := r.client.Get(ctx, specPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	services := make([]specification.Service, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var svc specification.Service
		if err := r.codec.Decode(kv.Value, &svc); err != nil {
			r.logger.Warn("skipping malformed specification", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		services = append(services, svc)
	}
	return services, nil
}

func (r *EtcdCatalog) Lookup(ctx context.Context, serviceName string) (*specification.Service, error) {
	resp, err := r.client.Get(ctx, specPrefix+serviceName)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serviceName)
	}
	var svc specification.Service
	if err := r.codec.Decode(resp.Kvs[0].Value, &svc); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", serviceName, err)
	}
	return &svc, nil
}

// Register announces an instance with a TTL lease and keeps the lease alive
// until ctx is cancelled.
//
// The lease id stays local so several registrations can share one catalog.
func (r *EtcdCatalog) Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := r.codec.Encode(instance)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, instancePrefix+serviceName+"/"+instance.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}

	// Drain keepalive responses so the channel never fills up.
	go func() {
		for range ch {
		}
	}()
	return nil
}

func (r *EtcdCatalog) Deregister(ctx context.Context, serviceName string, addr string) error {
	_, err := r.client.Delete(ctx, instancePrefix+serviceName+"/"+addr)
	return err
}

func (r *EtcdCatalog) Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error) {
	resp, err := r.client.Get(ctx, instancePrefix+serviceName+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]ServiceInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance ServiceInstance
		if err := r.codec.Decode(kv.Value, &instance); err != nil {
			r.logger.Warn("skipping malformed instance", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// Watch emits the full instance list of a service whenever it changes.
// The channel is closed when ctx is done.
func (r *EtcdCatalog) Watch(ctx context.Context, serviceName string) <-chan []ServiceInstance {
	ch := make(chan []ServiceInstance, 1)

	go func() {
		defer close(ch)
		watchChan := r.client.Watch(ctx, instancePrefix+serviceName+"/", clientv3.WithPrefix())
		for range watchChan {
			instances, err := r.Discover(ctx, serviceName)
			if err != nil {
				r.logger.Warn("re-discovering instances failed", zap.String("service", serviceName), zap.Error(err))
				continue
			}
			select {
			case ch <- instances:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}
