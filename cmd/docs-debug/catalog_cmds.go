package main

import (
	"context"
	"docs-debug/catalog"
	"docs-debug/codec"
	"docs-debug/specification"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services of the catalog and their methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			services, err := a.catalog.Services(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, svc := range services {
				fmt.Fprintf(out, "%s (%s)\n", svc.Name, svc.Kind)
				for _, m := range svc.Methods {
					fmt.Fprintf(out, "  %s\t%s\n", m.Name, strings.Join(m.MimeTypes(), ", "))
				}
			}
			return nil
		},
	}
}

func newInstancesCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "instances SERVICE",
		Short: "List the instances able to answer a service's invocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if watch {
				if a.etcd == nil {
					return fmt.Errorf("--watch needs the etcd catalog")
				}
				for instances := range a.etcd.Watch(cmd.Context(), args[0]) {
					printInstances(cmd, instances)
					fmt.Fprintln(out, "---")
				}
				return nil
			}

			ctx, cancel := a.context(cmd.Context())
			defer cancel()
			instances, err := a.catalog.Discover(ctx, args[0])
			if err != nil {
				return err
			}
			printInstances(cmd, instances)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep printing the instance list as it changes")
	return cmd
}

func printInstances(cmd *cobra.Command, instances []catalog.ServiceInstance) {
	for _, inst := range instances {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tweight=%d\t%s\n", inst.Addr, inst.Weight, inst.Version)
	}
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish FILE",
		Short: "Publish every service of a specification document to etcd",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			cdc, err := codec.ForPath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var spec specification.Specification
			if err := cdc.Decode(data, &spec); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			ctx, cancel := a.context(cmd.Context())
			defer cancel()
			for _, svc := range spec.Services {
				if err := reg.Publish(ctx, svc); err != nil {
					return fmt.Errorf("publish %s: %w", svc.Name, err)
				}
				a.logger.Info("published service", zap.String("service", svc.Name), zap.Stringer("kind", svc.Kind))
			}
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		weight  int
		version string
		ttl     int64
	)
	cmd := &cobra.Command{
		Use:   "register SERVICE ADDR",
		Short: "Announce an instance of a service until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			instance := catalog.ServiceInstance{Addr: args[1], Weight: weight, Version: version}
			if err := reg.Register(ctx, args[0], instance, ttl); err != nil {
				return fmt.Errorf("register %s: %w", args[0], err)
			}
			a.logger.Info("registered instance", zap.String("service", args[0]), zap.String("addr", instance.Addr))

			<-ctx.Done()

			// ctx is gone, give the cleanup its own deadline.
			cleanup, cancel := a.context(context.Background())
			defer cancel()
			return reg.Deregister(cleanup, args[0], instance.Addr)
		},
	}
	cmd.Flags().IntVar(&weight, "weight", 1, "Instance weight for the weighted_random balancer")
	cmd.Flags().StringVar(&version, "version", "", "Instance version label")
	cmd.Flags().Int64Var(&ttl, "ttl", 10, "Lease TTL in seconds")
	return cmd
}
