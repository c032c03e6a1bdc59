package board

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/boardsync/internal/app"
	"github.com/thenoetrevino/boardsync/internal/cli"
	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/services"
	boardservice "github.com/thenoetrevino/boardsync/internal/services/board"
	"github.com/thenoetrevino/boardsync/internal/types"
	"github.com/thenoetrevino/boardsync/internal/user"
)

// CreateCmd returns the board create subcommand. Boards are created
// directly in the server's database; there is no hub method for it.
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board in the local database",
		Long: `Create a board owned by a user (default: you). This writes to the database the
server uses (server.db_path, or --db), so run it on the server host.

Examples:
  boardsync board create --title="Sprint 12" --owner=alice
  BOARD_ID=$(boardsync board create --title="Roadmap" --owner=alice --public --public-level=reader --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Board title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("Error marking flag as required", "error", err)
	}
	cmd.Flags().String("owner", "", "Owning user ID (default: current system user)")
	cmd.Flags().Bool("public", false, "Let users without a grant in")
	cmd.Flags().String("public-level", "reader", "Level for users without a grant on a public board")
	cmd.Flags().String("db", "", "Database path (default: server.db_path from config)")

	cli.AddOutputFlags(cmd)

	return cmd
}

type createdBoard struct {
	ID       types.ID     `json:"id"`
	Title    string       `json:"title"`
	OwnerID  types.UserID `json:"ownerId"`
	IsPublic bool         `json:"isPublic"`
}

func (b createdBoard) GetID() types.ID { return b.ID }

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.GetFormatter(cmd)

	title, _ := cmd.Flags().GetString("title")
	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		owner = string(user.CurrentUserID())
	}
	isPublic, _ := cmd.Flags().GetBool("public")
	dbPath, _ := cmd.Flags().GetString("db")

	var publicLevel *models.AccessLevel
	if isPublic {
		raw, _ := cmd.Flags().GetString("public-level")
		level, err := models.ParseAccessLevel(raw)
		if err != nil {
			return formatter.Fail("INVALID_LEVEL", err)
		}
		publicLevel = &level
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail("INITIALIZATION_ERROR", err)
	}
	if dbPath == "" {
		dbPath = cliInstance.Config.Server.DBPath
	}

	db, err := database.InitDB(ctx, dbPath)
	if err != nil {
		return formatter.Fail("DATABASE_ERROR", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()

	a := app.New(db)
	defer func() { _ = a.Close() }()

	board, err := a.BoardService.Create(ctx, services.Caller{UserID: types.UserID(owner)}, boardservice.CreateBoardRequest{
		Title:       title,
		IsPublic:    isPublic,
		PublicLevel: publicLevel,
	})
	if err != nil {
		return formatter.Fail("BOARD_CREATE_ERROR", err)
	}

	out := createdBoard{ID: board.ID, Title: board.Title, OwnerID: board.OwnerID, IsPublic: board.IsPublic}
	if formatter.Quiet {
		fmt.Println(out.ID)
		return nil
	}
	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"board":   out,
		})
	}

	fmt.Printf("✓ Board '%s' created successfully (ID: %s)\n", out.Title, out.ID)
	fmt.Printf("  Use it with: eval $(boardsync use board %s)\n", out.ID)
	return nil
}
