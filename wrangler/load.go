package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/steamid"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	elasticservice "kzsync/scraper/services/elastic"
	syncservice "kzsync/scraper/services/sync"
)

// zpamm approved every server of the historical dump era; the dump format
// itself carries no approver column.
const fallbackApprover uint32 = 17690692

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a JSON dump into the store",
	}

	cmd.AddCommand(newLoadPlayersCmd())
	cmd.AddCommand(newLoadMapsCmd())
	cmd.AddCommand(newLoadServersCmd())
	cmd.AddCommand(newLoadRecordsCmd())
	cmd.AddCommand(newLoadElasticCmd())

	return cmd
}

// readJSON decodes a whole dump file into out.
func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("couldn't parse %s: %w", path, err)
	}

	return nil
}

func newLoadPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players <dump.json>",
		Short: "Load a player listing dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dump []globalapi.Player
			if err := readJSON(args[0], &dump); err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			rows := make([]*models.Player, 0, len(dump))
			for _, p := range dump {
				id, err := steamid.ParseID64(p.SteamID64)
				if err != nil {
					s.log.Errorf("Skipping player %q: %v", p.Name, err)
					continue
				}
				rows = append(rows, &models.Player{ID: id, Name: p.Name, IsBanned: p.IsBanned})
			}

			count, err := s.players.UpsertBatch(cmd.Context(), rows, database.PolicyIgnore)
			if err != nil {
				return err
			}

			fmt.Printf("processed %d players\n", count)
			return nil
		},
	}
}

func newLoadMapsCmd() *cobra.Command {
	var metaPath string

	cmd := &cobra.Command{
		Use:   "maps <dump.json>",
		Short: "Load a map listing dump, merged with a metadata dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var globalMaps []globalapi.Map
			if err := readJSON(args[0], &globalMaps); err != nil {
				return err
			}

			var metaMaps []kzgo.Map
			if metaPath != "" {
				if err := readJSON(metaPath, &metaMaps); err != nil {
					return err
				}
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			service := syncservice.NewService(
				nil, nil,
				s.players, s.maps, s.servers, s.mappers, s.filters,
				s.log, s.cfg.Ingest.ChunkSize,
			)

			if err := service.ApplyMaps(cmd.Context(), globalMaps, metaMaps); err != nil {
				return err
			}

			fmt.Printf("processed %d maps\n", len(globalMaps))
			return nil
		},
	}

	cmd.Flags().StringVar(&metaPath, "meta", "", "metadata provider dump with bonus counts and mode flags")

	return cmd
}

func newLoadServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers <dump.json>",
		Short: "Load a server listing dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dump []globalapi.Server
			if err := readJSON(args[0], &dump); err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			owners := make([]*models.Player, 0, len(dump))
			rows := make([]*models.Server, 0, len(dump))

			for _, srv := range dump {
				id, err := errs.NarrowUint16("server_id", srv.ID)
				if err != nil {
					s.log.Errorf("Skipping server %q: %v", srv.Name, err)
					continue
				}

				ownerID, err := steamid.ParseID64(srv.OwnerSteamID64)
				if err != nil {
					s.log.Errorf("Skipping server %q: %v", srv.Name, err)
					continue
				}

				approver := fallbackApprover
				owners = append(owners,
					&models.Player{ID: ownerID, Name: "unknown"},
					&models.Player{ID: approver, Name: "unknown"},
				)
				rows = append(rows, &models.Server{
					ID:         id,
					Name:       srv.Name,
					OwnedBy:    ownerID,
					ApprovedBy: &approver,
				})
			}

			if _, err := s.players.UpsertBatch(cmd.Context(), owners, database.PolicyIgnore); err != nil {
				return err
			}

			count, err := s.servers.UpsertBatch(cmd.Context(), rows, database.PolicyUpdate)
			if err != nil {
				return err
			}

			fmt.Printf("processed %d servers\n", count)
			return nil
		},
	}
}

func newLoadRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records <dump.json>",
		Short: "Load a record dump; maps, servers and players must be loaded first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dump []globalapi.Record
			if err := readJSON(args[0], &dump); err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			rows, courses := convertRecordDump(s, dump)

			if len(courses) > 0 {
				if _, err := s.maps.UpsertCourseBatch(cmd.Context(), courses); err != nil {
					return err
				}
			}

			count, err := s.records.CreateBatch(cmd.Context(), rows)
			if err != nil {
				return err
			}

			fmt.Printf("processed %d records\n", count)
			return nil
		},
	}
}

// convertRecordDump narrows a record dump into store rows plus the course
// rows the records imply. Rows that fail narrowing are skipped, not
// truncated.
func convertRecordDump(s *store, dump []globalapi.Record) ([]*models.Record, []*models.Course) {
	rows := make([]*models.Record, 0, len(dump))
	courses := make([]*models.Course, 0)
	seenCourses := make(map[uint32]bool)

	for _, r := range dump {
		modeID, ok := models.ModeIDFromName(r.ModeName)
		if !ok {
			s.log.Errorf("Skipping record %d with unknown mode %q", r.ID, r.ModeName)
			continue
		}

		mapID, err := errs.NarrowUint16("map_id", r.MapID)
		if err != nil {
			s.log.Errorf("Skipping record %d: %v", r.ID, err)
			continue
		}

		stage, err := errs.NarrowUint8("stage", r.Stage)
		if err != nil || stage >= models.MaxStages {
			s.log.Errorf("Skipping record %d with bad stage %d", r.ID, r.Stage)
			continue
		}

		serverID, err := errs.NarrowUint16("server_id", r.ServerID)
		if err != nil {
			s.log.Errorf("Skipping record %d: %v", r.ID, err)
			continue
		}

		playerID, err := steamid.ParseID64(r.SteamID64)
		if err != nil {
			s.log.Errorf("Skipping record %d: %v", r.ID, err)
			continue
		}

		teleports, err := errs.NarrowUint16("teleports", r.Teleports)
		if err != nil {
			s.log.Errorf("Skipping record %d: %v", r.ID, err)
			continue
		}

		if r.Time < 0 {
			s.log.Errorf("Skipping record %d with negative time %f", r.ID, r.Time)
			continue
		}

		courseID := models.CourseID(mapID, stage)
		if !seenCourses[courseID] {
			seenCourses[courseID] = true
			courses = append(courses, &models.Course{ID: courseID, MapID: mapID, Stage: stage})
		}

		rows = append(rows, &models.Record{
			ID:        r.ID,
			CourseID:  courseID,
			ModeID:    modeID,
			PlayerID:  playerID,
			ServerID:  serverID,
			Time:      r.Time,
			Teleports: teleports,
			CreatedOn: r.CreatedOn.Time,
		})
	}

	return rows, courses
}

func newLoadElasticCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elastic-records <dump.json>",
		Short: "Load a raw search-index dump, reconciling map and server names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs []json.RawMessage
			if err := readJSON(args[0], &docs); err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			service := elasticservice.NewService(
				nil,
				s.players, s.maps, s.servers, s.records,
				s.log, s.cfg.Ingest.PollDelay,
			)

			loaded, malformed, err := service.LoadDocuments(cmd.Context(), docs)
			if err != nil {
				return err
			}

			if len(malformed) > 0 {
				key := fmt.Sprintf("malformed/%s.json", filepath.Base(args[0]))
				if err := s.log.UploadJSON(context.Background(), key, malformed); err != nil {
					s.log.Errorf("Couldn't ship the malformed dump: %v", err)
				}
			}

			fmt.Printf("processed %d records, %d malformed\n", loaded, len(malformed))
			return nil
		},
	}
}
