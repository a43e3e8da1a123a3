package main

import (
	"context"
	"fmt"
	"time"

	"shepherd/config"
	"shepherd/internal/adapter/docker"
	"shepherd/internal/reconcile"

	"github.com/spf13/cobra"
)

const statusTimeout = 30 * time.Second

func statusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the service's replicas and their health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
			defer cancel()
			return status(ctx, *configPath)
		},
	}
}

func status(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rt, err := docker.NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	entries, err := rt.ContainerList(ctx, map[string]string{reconcile.LabelService: cfg.Service})
	if err != nil {
		return err
	}

	running, dead := 0, 0
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		health := "dead"
		if reconcile.IsRunning(e.State, e.Status) {
			health = "running"
			running++
		} else {
			dead++
		}

		version := ""
		if detail, inspErr := rt.ContainerInspect(ctx, e.ID); inspErr == nil {
			version = detail.Labels[reconcile.LabelVersion]
		}

		rows = append(rows, []string{shortID(e.ID), e.State, e.Status, version, health})
	}

	fmt.Printf("service %s: desired %d x %s, running %d, dead %d\n\n",
		cfg.Service, cfg.Replicas, cfg.Image, running, dead)
	if len(rows) == 0 {
		fmt.Println("no replicas found")
		return nil
	}
	fmt.Println(renderTable([]string{"ID", "STATE", "STATUS", "VERSION", "HEALTH"}, rows))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
