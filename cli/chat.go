package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the stored posts interactively",
	Long: `Starts an interactive loop: each question is answered from the most
similar stored documents. Type "quit" or "종료" to exit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of documents per answer (overrides config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	k := a.cfg.Chat.TopK
	if chatTopK > 0 {
		k = chatTopK
	}

	c, _, err := a.buildChat()
	if err != nil {
		return err
	}

	cmd.Println("theqoo 질문 답변 채팅입니다. 종료하려면 'quit'을 입력하세요.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("\n질문> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "quit" || question == "exit" || question == "종료" {
			return nil
		}

		answer, sources, err := c.Ask(cmd.Context(), question, k)
		if err != nil {
			cmd.Printf("오류: %v\n", err)
			continue
		}

		cmd.Println()
		cmd.Println(answer)
		if len(sources) > 0 {
			cmd.Println("\n참고 문서:")
			for i, src := range sources {
				cmd.Printf("  %d. %s (%.3f)\n     %s\n", i+1, src.Title, src.Score, src.Link)
			}
		}
	}
}
