package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/internal/transport/kafka"
)

func newEnqueueCmd(a *app) *cobra.Command {
	var src docSource
	cmd := &cobra.Command{
		Use:   "enqueue <document-id>",
		Short: "Publish an index event to Kafka for asynchronous indexing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, content, fileType, err := src.resolve()
			if err != nil {
				return err
			}
			brokers := a.v.GetStringSlice(keyBrokers)
			if len(brokers) == 0 {
				return errors.New("--brokers is required")
			}
			topic := a.v.GetString(keyTopic)

			p := a.newPublisher(brokers, topic)
			defer func() { _ = p.Close() }()

			err = p.Publish(cmd.Context(), kafka.IndexEvent{
				DocumentID: args[0],
				Title:      title,
				Content:    content,
				FileType:   fileType,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, map[string]any{"enqueued": args[0], "topic": topic})
			}
			_, _ = fmt.Fprintf(out, "%s %s to %s\n", okText("enqueued"), args[0], topic)
			return nil
		},
	}
	src.register(cmd)

	f := cmd.Flags()
	f.StringSlice("brokers", nil, "Kafka broker addresses")
	f.String("topic", "", "Kafka topic (default docsearch.index)")
	_ = a.v.BindPFlag(keyBrokers, f.Lookup("brokers"))
	_ = a.v.BindPFlag(keyTopic, f.Lookup("topic"))
	return cmd
}
