package main

import (
	"fmt"
	"time"

	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/reconciler"
	"github.com/spf13/cobra"
)

// demoCmd drives a Reconciler through a scripted sequence of batches with
// no network, certificates, or metastore involved — a quick way to watch
// the first-boot, stale-add, and service-identity-change behaviors without
// standing up a full cluster.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted broadcast feed against an in-process Reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.WithComponent("demo")
		rec := reconciler.NewReconciler()
		rec.Start()
		defer rec.Stop()

		service := catalog.ServiceID{Hi: 0x1, Lo: 0x1}

		step := func(name string, batch catalog.Batch) {
			ack, err := rec.ApplyUpdate(batch)
			if err != nil {
				fmt.Printf("[%s] rejected: %v\n", name, err)
				return
			}
			fmt.Printf("[%s] accepted; catalog_service_id=%s ready=%v watermark=%d dbs=%d\n",
				name, ack.ServiceID.String(), rec.Ready(), rec.LastSyncedVersion(), len(rec.ListDatabaseNames("")))
		}

		step("first boot", catalog.Batch{
			ServiceID: service,
			Updated: []catalog.Object{
				{Kind: catalog.KindCatalogMarker, Version: 1},
				{Kind: catalog.KindDatabase, Db: "default", Version: 1},
				{Kind: catalog.KindTable, Db: "default", Name: "events", Version: 1,
					Columns: []catalog.Column{{Name: "id", Type: "BIGINT"}, {Name: "payload", Type: "STRING"}},
				},
			},
		})
		time.Sleep(50 * time.Millisecond)

		step("drop events (direct DDL-style, explicit version)", catalog.Batch{
			ServiceID: service,
			Removed:   []catalog.Object{{Kind: catalog.KindTable, Db: "default", Name: "events", Version: 2}},
		})
		time.Sleep(50 * time.Millisecond)

		step("stale re-add of events at its old version (should be suppressed)", catalog.Batch{
			ServiceID: service,
			Updated:   []catalog.Object{{Kind: catalog.KindTable, Db: "default", Name: "events", Version: 1}},
		})
		time.Sleep(50 * time.Millisecond)

		step("service identity change (flushes the cache)", catalog.Batch{
			ServiceID: catalog.ServiceID{Hi: 0x2, Lo: 0x2},
		})

		logger.Info().Msg("demo finished")
		return nil
	},
}
