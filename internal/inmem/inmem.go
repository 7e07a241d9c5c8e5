/*
Package inmem implements query stores in memory using purely Go constructs.
Anything kept in them is lost when the process exits; use the postgres store
where the query must survive a restart.
*/
package inmem
