package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/network"
)

// version is set by ldflags during build
var version = "dev"

type Globals struct {
	Server string `kong:"default='http://localhost:8080',env='RPS_SERVER',help='Game server base URL'"`
	User   int64  `kong:"short='u',env='RPS_USER',help='Acting user id'"`
	Header string `kong:"default='X-User-Id',help='Header carrying the user id'"`
}

func (g *Globals) api() *APIClient {
	return NewAPIClient(g.Server, g.Header, g.User)
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	List    ListCmd          `cmd:"" help:"List all games"`
	Create  CreateCmd        `cmd:"" help:"Create a game as the acting user"`
	Get     GetCmd           `cmd:"" help:"Show one game"`
	Invite  InviteCmd        `cmd:"" help:"Add an opponent to a pending game"`
	Play    PlayCmd          `cmd:"" help:"Submit rock, paper or scissors"`
	Delete  DeleteCmd        `cmd:"" help:"Delete a game you play in"`
	Watch   WatchCmd         `cmd:"" help:"Stream updates of your games"`
}

type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	games, err := g.api().ListGames(context.Background())
	if err != nil {
		return err
	}
	return printJSON(games)
}

type CreateCmd struct{}

func (c *CreateCmd) Run(g *Globals) error {
	game, err := g.api().CreateGame(context.Background())
	if err != nil {
		return err
	}
	return printJSON(game)
}

type GetCmd struct {
	Game int64 `arg:"" help:"Game id"`
}

func (c *GetCmd) Run(g *Globals) error {
	game, err := g.api().GetGame(context.Background(), c.Game)
	if err != nil {
		return err
	}
	return printJSON(game)
}

type InviteCmd struct {
	Game     int64 `arg:"" help:"Game id"`
	Opponent int64 `arg:"" help:"Opponent user id"`
}

func (c *InviteCmd) Run(g *Globals) error {
	game, err := g.api().Invite(context.Background(), c.Game, c.Opponent)
	if err != nil {
		return err
	}
	return printJSON(game)
}

type PlayCmd struct {
	Game   int64  `arg:"" help:"Game id"`
	Choice string `arg:"" enum:"rock,paper,scissors" help:"rock, paper or scissors"`
}

func (c *PlayCmd) Run(g *Globals) error {
	game, err := g.api().Play(context.Background(), c.Game, c.Choice)
	if err != nil {
		return err
	}
	return printJSON(game)
}

type DeleteCmd struct {
	Game int64 `arg:"" help:"Game id"`
}

func (c *DeleteCmd) Run(g *Globals) error {
	if err := g.api().DeleteGame(context.Background(), c.Game); err != nil {
		return err
	}
	fmt.Printf("Game %d deleted\n", c.Game)
	return nil
}

type WatchCmd struct{}

func (c *WatchCmd) Run(g *Globals) error {
	api := g.api()
	wsURL, err := api.WebSocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, api.AuthHeader())
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	fmt.Fprintf(os.Stderr, "Watching games of user %d on %s\n", g.User, wsURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		var packet network.Packet
		if err := conn.ReadJSON(&packet); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		fmt.Println(describe(packet))
	}
}

// describe renders one server event as a single line.
func describe(packet network.Packet) string {
	switch packet.Type {
	case network.MsgTypeGameUpdated:
		var game models.Game
		if err := json.Unmarshal(packet.Data, &game); err != nil {
			break
		}
		line := fmt.Sprintf("game %d %s", game.ID, game.State)
		if game.Result != nil {
			line += fmt.Sprintf(" (%s vs %s: %s)", *game.PlayLeft, *game.PlayRight, *game.Result)
		}
		return line
	case network.MsgTypeGameDeleted:
		var deleted struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(packet.Data, &deleted); err != nil {
			break
		}
		return fmt.Sprintf("game %d deleted", deleted.ID)
	}
	return fmt.Sprintf("%s %s", packet.Type, packet.Data)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rps-client"),
		kong.Description("Command line client for the rock-paper-scissors server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
