package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/filecabinet/filecabinet/internal/engine"
	"github.com/filecabinet/filecabinet/internal/record"
)

type createFlags struct {
	firstName string
	lastName  string
	dob       string
	gender    string
	height    int16
	weight    string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	f := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Args:  cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			data, err := f.data()
			if err != nil {
				return err
			}
			id, err := e.Store().Create(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record #%d is created.\n", id)
			return nil
		}),
	}

	cmd.Flags().StringVar(&f.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.dob, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.gender, "gender", "", "gender (one character)")
	cmd.Flags().Int16Var(&f.height, "height", 0, "height")
	cmd.Flags().StringVar(&f.weight, "weight", "0", "weight")

	return cmd
}

func (f *createFlags) data() (record.Data, error) {
	dob, err := time.Parse(record.DateLayout, f.dob)
	if err != nil {
		return record.Data{}, fmt.Errorf("invalid --date-of-birth %q: %w", f.dob, err)
	}
	if utf8.RuneCountInString(f.gender) != 1 {
		return record.Data{}, fmt.Errorf("invalid --gender %q: want one character", f.gender)
	}
	gender, _ := utf8.DecodeRuneInString(f.gender)
	weight, err := decimal.NewFromString(f.weight)
	if err != nil {
		return record.Data{}, fmt.Errorf("invalid --weight %q: %w", f.weight, err)
	}

	return record.Data{
		FirstName:   f.firstName,
		LastName:    f.lastName,
		DateOfBirth: dob,
		Gender:      gender,
		Height:      f.height,
		Weight:      weight,
	}, nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			if err := e.Store().Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record #%d is deleted.\n", id)
			return nil
		}),
	}
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		where []string
		or    bool
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find records matching field conditions",
		Long: `Find records matching field conditions. Conditions are combined with AND
unless --or is given; with no conditions every record is listed.`,
		Example: `  filecabinet find --where firstname=jane --where height=170
  filecabinet find --or --where lastname=doe --where lastname=roe`,
		Args: cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			conds := make([]record.Condition, 0, len(where))
			for _, w := range where {
				field, value, ok := strings.Cut(w, "=")
				if !ok {
					return fmt.Errorf("invalid --where %q: want field=value", w)
				}
				c, err := record.ParseCondition(field, value)
				if err != nil {
					return err
				}
				conds = append(conds, c)
			}
			union := record.And
			if or {
				union = record.Or
			}

			found, err := e.Store().Find(conds, union)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range found {
				fmt.Fprintln(out, r)
			}
			return nil
		}),
	}

	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "condition field=value (repeatable)")
	cmd.Flags().BoolVar(&or, "or", false, "combine conditions with OR")

	return cmd
}
