// Package topology owns the Execution Topology State: how many worker
// processes the external launcher spawns and which numeric precision mode
// they run with. The state is detected once, persisted as a launcher-
// compatible YAML file, and from then on passed by value into the invoker,
// never read back as ambient global state.
package topology
