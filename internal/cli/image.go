package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cytomine "github.com/Bangulli/cytomine/pkg/sdk"
)

var (
	imageID       int64
	imagePath     string
	imageFilename string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Add a slide to the engine's index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImage(cmd, "index")
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a slide from the engine's index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImage(cmd, "remove")
	},
}

func init() {
	for _, c := range []*cobra.Command{indexCmd, removeCmd} {
		c.Flags().Int64Var(&imageID, "id", 0, "image identifier")
		c.Flags().StringVar(&imagePath, "path", "", "directory of the slide")
		c.Flags().StringVar(&imageFilename, "filename", "", "slide file name")
		rootCmd.AddCommand(c)
	}
}

func runImage(cmd *cobra.Command, op string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	img := cytomine.Image{ID: imageID, Path: imagePath, Filename: imageFilename}
	var reply cytomine.Reply
	if op == "index" {
		reply, err = client.Index(cmd.Context(), img)
	} else {
		reply, err = client.Remove(cmd.Context(), img)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	if outputJSON {
		return printJSON(cmd, map[string]any{
			"status": reply.StatusCode,
			"body":   string(reply.Body),
		})
	}
	cmd.Printf("%s %d: engine answered %d\n", op, imageID, reply.StatusCode)
	if len(reply.Body) > 0 {
		cmd.Println(string(reply.Body))
	}
	return nil
}
