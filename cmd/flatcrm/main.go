// Package main is the entry point for the flatcrm console.
//
// flatcrm is a small customer-relationship record keeper. Records live as
// delimited lines in plain text files under the data directory, one file
// per entity type, and a text menu on stdin drives the stores.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"flatcrm/internal/config"
	"flatcrm/internal/crm"
	"flatcrm/internal/docgen"
	"flatcrm/internal/models"
	"flatcrm/internal/notify"
	"flatcrm/internal/store"
	"flatcrm/internal/worker"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "flatcrm: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "flatcrm.yaml", "Path to the YAML config file")
	dataDir := flag.String("data-dir", "", "Data directory (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	workers := flag.Int("workers", 0, "Background pool size (overrides config)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   parseLevel(cfg.LogLevel),
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	users, err := store.NewUsers(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	clients, err := store.NewClients(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	contacts, err := store.NewContacts(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	deals, err := store.NewDeals(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	tasks, err := store.NewTasks(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	messages, err := store.NewMessages(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	renderer, err := docgen.NewRenderer(filepath.Join(cfg.DataDir, "sales_contract.txt"))
	if err != nil {
		return err
	}

	pool := worker.NewPool(cfg.Workers, logger)
	defer pool.Close()

	// Keep the task mirror honest if someone edits the snapshot file
	// outside this process.
	go func() {
		if err := tasks.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("task watcher stopped", "err", err)
		}
	}()

	app := &console{
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		pool:     pool,
		users:    crm.NewUserService(users, pool, &notify.LogMailer{Log: logger}),
		clients:  crm.NewClientService(clients, pool, renderer, cfg.DataDir),
		contacts: crm.NewContactService(contacts),
		deals:    crm.NewDealService(deals),
		tasks:    crm.NewTaskService(tasks),
		messages: crm.NewMessageService(messages),
	}
	return app.run(ctx)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// console is the interactive menu. It is peripheral glue: it collects
// input, calls the services and prints results; all rules live below it.
type console struct {
	in  *bufio.Scanner
	out *os.File

	pool     *worker.Pool
	users    *crm.UserService
	clients  *crm.ClientService
	contacts *crm.ContactService
	deals    *crm.DealService
	tasks    *crm.TaskService
	messages *crm.MessageService

	current *models.User
}

func (c *console) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.printMenu()
		choice, ok := c.prompt("> ")
		if !ok {
			return nil
		}
		if choice == "0" {
			return nil
		}
		if err := c.dispatch(choice); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *console) printMenu() {
	fmt.Fprint(c.out, `
=== Menu ===
 1. Register user        9. Update client field   17. Update deal status
 2. Sign in             10. Delete client         18. Delete deal
 3. List users          11. Add contact           19. Add task
 4. Fire user           12. Delete contact        20. List tasks
 5. Add client          13. Prune contacts        21. Update task field
 6. List clients        14. Client details        22. Delete task
 7. Clients of manager  15. Add deal              23. Send message
 8. Search client       16. List deals            24. Read messages
 0. Quit
`)
}

func (c *console) dispatch(choice string) error {
	switch choice {
	case "1":
		return c.registerUser()
	case "2":
		return c.signIn()
	case "3":
		return c.listUsers()
	case "4":
		return c.fireUser()
	case "5":
		return c.addClient()
	case "6":
		return c.listClients()
	case "7":
		return c.clientsOfManager()
	case "8":
		return c.searchClient()
	case "9":
		return c.updateClientField()
	case "10":
		return c.deleteClient()
	case "11":
		return c.addContact()
	case "12":
		return c.deleteContact()
	case "13":
		return c.pruneContacts()
	case "14":
		return c.clientDetails()
	case "15":
		return c.addDeal()
	case "16":
		return c.listDeals()
	case "17":
		return c.updateDealStatus()
	case "18":
		return c.deleteDeal()
	case "19":
		return c.addTask()
	case "20":
		return c.listTasks()
	case "21":
		return c.updateTaskField()
	case "22":
		return c.deleteTask()
	case "23":
		return c.sendMessage()
	case "24":
		return c.readMessages()
	}
	fmt.Fprintln(c.out, "unknown command, try again")
	return nil
}

// prompt reads one input line; ok is false on EOF.
func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *console) promptID(label string) (int64, error) {
	s, ok := c.prompt(label)
	if !ok {
		return 0, errors.New("input closed")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func (c *console) registerUser() error {
	email, _ := c.prompt("email: ")
	password, _ := c.prompt("password: ")
	name, _ := c.prompt("name: ")
	lastName, _ := c.prompt("last name: ")
	roleStr, _ := c.prompt("role (ADMIN/MANAGER/SERVICE/SUPERVISION): ")
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return err
	}
	u, _, err := c.users.SignUp(email, password, name, lastName, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "registered user %d\n", u.ID)
	return nil
}

func (c *console) signIn() error {
	email, _ := c.prompt("email: ")
	password, _ := c.prompt("password: ")
	ok, err := c.users.SignIn(email, password)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "wrong email or password")
		return nil
	}
	usr, err := c.users.GetByEmail(email)
	if err != nil {
		return err
	}
	c.current = &usr
	fmt.Fprintf(c.out, "welcome, %s\n", usr.Name)
	return nil
}

func (c *console) listUsers() error {
	all, err := c.users.Users()
	if err != nil {
		return err
	}
	for _, u := range all {
		fmt.Fprintf(c.out, "%d. %s %s <%s> %s %s\n", u.ID, u.Name, u.LastName, u.Email, u.Role, u.Status)
	}
	return nil
}

func (c *console) fireUser() error {
	id, err := c.promptID("user id: ")
	if err != nil {
		return err
	}
	if err := c.users.Fire(id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "user fired")
	return nil
}

func (c *console) addClient() error {
	if c.current == nil {
		fmt.Fprintln(c.out, "sign in first")
		return nil
	}
	name, _ := c.prompt("name: ")
	email, _ := c.prompt("email: ")
	phone, _ := c.prompt("phone: ")
	address, _ := c.prompt("address: ")
	cl, _, err := c.clients.Save(c.current.ID, name, email, phone, address, models.ClientActive)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added client %d\n", cl.ID)
	return nil
}

func (c *console) listClients() error {
	all, err := c.clients.Clients()
	if err != nil {
		return err
	}
	for _, cl := range all {
		fmt.Fprintf(c.out, "%d. %s <%s> %s %s %s\n", cl.ID, cl.Name, cl.Email, cl.Phone, cl.Address, cl.Status)
	}
	return nil
}

func (c *console) clientsOfManager() error {
	userID, err := c.promptID("manager id: ")
	if err != nil {
		return err
	}
	all, err := c.clients.ClientsOf(userID)
	if err != nil {
		return err
	}
	for _, cl := range all {
		fmt.Fprintf(c.out, "%d. %s <%s> %s\n", cl.ID, cl.Name, cl.Email, cl.Status)
	}
	return nil
}

func (c *console) deleteClient() error {
	id, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	// Fire-and-forget: the pool logs a failure, the menu moves on.
	c.pool.Submit("delete client", func() error {
		return c.clients.Delete(id)
	})
	fmt.Fprintln(c.out, "delete submitted")
	return nil
}

func (c *console) searchClient() error {
	term, _ := c.prompt("name, email or phone: ")
	found, err := c.clients.Search(term)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(c.out, "no clients matched")
		return nil
	}
	for _, cl := range found {
		fmt.Fprintf(c.out, "%d. %s <%s> %s\n", cl.ID, cl.Name, cl.Email, cl.Phone)
	}
	return nil
}

func (c *console) updateClientField() error {
	id, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	fieldStr, _ := c.prompt("field (name/email/phone/address): ")
	var field store.ClientField
	switch fieldStr {
	case "name":
		field = store.ClientName
	case "email":
		field = store.ClientEmail
	case "phone":
		field = store.ClientPhone
	case "address":
		field = store.ClientAddress
	default:
		return fmt.Errorf("unknown field %q", fieldStr)
	}
	value, _ := c.prompt("new value: ")
	if err := c.clients.UpdateField(id, field, value); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "client updated")
	return nil
}

func (c *console) addContact() error {
	clientID, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	name, _ := c.prompt("name: ")
	email, _ := c.prompt("email: ")
	phone, _ := c.prompt("phone: ")
	position, _ := c.prompt("position: ")
	ct, err := c.contacts.Add(clientID, name, email, phone, position)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added contact %d\n", ct.ID)
	return nil
}

func (c *console) deleteContact() error {
	id, err := c.promptID("contact id: ")
	if err != nil {
		return err
	}
	if err := c.contacts.Delete(id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "contact deleted")
	return nil
}

func (c *console) pruneContacts() error {
	clientID, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	countStr, _ := c.prompt("how many: ")
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return fmt.Errorf("bad count %q", countStr)
	}
	removed, err := c.contacts.Prune(clientID, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "removed %d contacts\n", removed)
	return nil
}

func (c *console) clientDetails() error {
	id, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	cl, err := c.clients.Get(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d. %s <%s> %s %s %s\n", cl.ID, cl.Name, cl.Email, cl.Phone, cl.Address, cl.Status)
	cts, err := c.contacts.ContactsFor(id)
	if err != nil {
		return err
	}
	for _, ct := range cts {
		fmt.Fprintf(c.out, "  contact %d: %s <%s> %s (%s)\n", ct.ID, ct.Name, ct.Email, ct.Phone, ct.Position)
	}
	for _, t := range c.tasks.TasksFor(id) {
		fmt.Fprintf(c.out, "  task %d: %s, due %s, %s\n", t.ID, t.Title, t.DueDate, t.Status)
	}
	ds, err := c.deals.DealsFor(id)
	if err != nil {
		return err
	}
	for _, d := range ds {
		fmt.Fprintf(c.out, "  deal %d: %s %.2f %s\n", d.ID, d.Title, d.Amount, d.Status)
	}
	return nil
}

func (c *console) addDeal() error {
	if c.current == nil {
		fmt.Fprintln(c.out, "sign in first")
		return nil
	}
	title, _ := c.prompt("title: ")
	clientID, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	amountStr, _ := c.prompt("amount: ")
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return fmt.Errorf("bad amount %q", amountStr)
	}
	d, err := c.deals.Open(title, clientID, c.current.ID, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added deal %d\n", d.ID)
	return nil
}

func (c *console) listDeals() error {
	all, err := c.deals.Deals()
	if err != nil {
		return err
	}
	for _, d := range all {
		closed := "-"
		if !d.ClosedDate.IsZero() {
			closed = d.ClosedDate.Format(models.DateLayout)
		}
		fmt.Fprintf(c.out, "%d. %s client=%d user=%d %.2f %s opened=%s closed=%s\n",
			d.ID, d.Title, d.ClientID, d.UserID, d.Amount, d.Status,
			d.CreatedDate.Format(models.DateLayout), closed)
	}
	return nil
}

func (c *console) updateDealStatus() error {
	id, err := c.promptID("deal id: ")
	if err != nil {
		return err
	}
	statusStr, _ := c.prompt("status (NEW/PROGRESS/COMPLETED/FAILED): ")
	status, err := models.ParseDealStatus(statusStr)
	if err != nil {
		return err
	}
	if err := c.deals.UpdateStatus(id, status); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "deal updated")
	return nil
}

func (c *console) deleteDeal() error {
	id, err := c.promptID("deal id: ")
	if err != nil {
		return err
	}
	c.pool.Submit("delete deal", func() error {
		return c.deals.Delete(id)
	})
	fmt.Fprintln(c.out, "delete submitted")
	return nil
}

func (c *console) addTask() error {
	clientID, err := c.promptID("client id: ")
	if err != nil {
		return err
	}
	title, _ := c.prompt("title: ")
	description, _ := c.prompt("description: ")
	assignedTo, err := c.promptID("assigned to user id: ")
	if err != nil {
		return err
	}
	dueDate, _ := c.prompt("due date (" + models.DateTimeLayout + "): ")
	statusStr, _ := c.prompt("status (CALL/MEETING/SALE): ")
	status, err := models.ParseTaskStatus(statusStr)
	if err != nil {
		return err
	}
	t, err := c.tasks.Add(clientID, title, description, assignedTo, dueDate, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added task %d\n", t.ID)
	return nil
}

func (c *console) listTasks() error {
	for _, t := range c.tasks.Tasks() {
		fmt.Fprintf(c.out, "%d. %s (%s) client=%d assigned=%d due=%s %s\n",
			t.ID, t.Title, t.Description, t.ClientID, t.AssignedTo, t.DueDate, t.Status)
	}
	return nil
}

func (c *console) updateTaskField() error {
	id, err := c.promptID("task id: ")
	if err != nil {
		return err
	}
	fieldStr, _ := c.prompt("field (title/description/assigned/due/status): ")
	var field store.TaskField
	switch fieldStr {
	case "title":
		field = store.TaskTitle
	case "description":
		field = store.TaskDescription
	case "assigned":
		field = store.TaskAssignedTo
	case "due":
		field = store.TaskDueDate
	case "status":
		field = store.TaskStatusField
	default:
		return fmt.Errorf("unknown field %q", fieldStr)
	}
	value, _ := c.prompt("new value: ")
	if err := c.tasks.Change(id, field, value); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "task updated")
	return nil
}

func (c *console) deleteTask() error {
	id, err := c.promptID("task id: ")
	if err != nil {
		return err
	}
	c.pool.Submit("delete task", func() error {
		return c.tasks.Delete(id)
	})
	fmt.Fprintln(c.out, "delete submitted")
	return nil
}

func (c *console) sendMessage() error {
	if c.current == nil {
		fmt.Fprintln(c.out, "sign in first")
		return nil
	}
	receiverID, err := c.promptID("to user id: ")
	if err != nil {
		return err
	}
	content, _ := c.prompt("message: ")
	if _, err := c.messages.Send(c.current.ID, receiverID, content); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "message sent")
	return nil
}

func (c *console) readMessages() error {
	if c.current == nil {
		fmt.Fprintln(c.out, "sign in first")
		return nil
	}
	all, err := c.messages.Inbox(c.current.ID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(c.out, "no messages")
		return nil
	}
	for _, m := range all {
		fmt.Fprintf(c.out, "%d. from=%d to=%d at %s: %s\n",
			m.ID, m.SenderID, m.ReceiverID, m.SentAt.Format(models.DateTimeLayout), m.Content)
	}
	return nil
}
